// Package config はbonfireコマンドの設定管理を行います
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/shiroemons/go-bonfire/internal/bonfire/fileutil"
	"github.com/shiroemons/go-bonfire/internal/bonfire/interfaces"
	"github.com/shiroemons/go-bonfire/pkg/sl2"
)

const Version = "0.1.0"

// DefaultConfigPath は既定の設定ファイル名です
const DefaultConfigPath = "bonfire.ini"

// Config はアプリケーションの設定を保持します
type Config struct {
	InputPath     string
	Game          string
	List          bool
	OutputPath    string
	Num           int
	Slot          int
	KeepDecrypted string
	Backup        bool
	RestorePath   string
	JSON          bool
	Watch         bool
	Workers       int
	ConfigPath    string
	DebugMode     bool
	ShowVersion   bool
}

// ParseFlags はコマンドライン引数を解析して設定を返します。
// 解析や検証に失敗した場合はエラーを表示して終了します。
func ParseFlags() *Config {
	cfg, err := Parse(os.Args[1:], flag.CommandLine.Output())
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Parse は引数を解析し、設定ファイルの既定値を反映して検証した設定を返します
func Parse(args []string, usageOut io.Writer) (*Config, error) {
	return ParseWithFS(args, usageOut, fileutil.NewOSFileSystem())
}

// ParseWithFS は設定ファイルを fsys から読み込む Parse です
func ParseWithFS(args []string, usageOut io.Writer, fsys interfaces.FileSystem) (*Config, error) {
	cfg := &Config{}
	flags := newFlagSet(cfg, usageOut)

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 1 {
		return nil, fmt.Errorf("%w: %s", ErrTooManyArgs, strings.Join(flags.Args(), " "))
	}
	cfg.InputPath = flags.Arg(0)

	if cfg.ShowVersion {
		return cfg, nil
	}

	set := map[string]bool{}
	flags.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	explicit := set["c"] || set["config"]
	if err := cfg.loadINI(fsys, set, explicit); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newFlagSet はフラグ定義を行います
func newFlagSet(cfg *Config, usageOut io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("bonfire", flag.ContinueOnError)
	fs.SetOutput(usageOut)

	// カスタムUsage関数を設定（ダブルハイフン表示）
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintln(out, "Usage: bonfire [options] <input.sl2>")
		fmt.Fprintln(out, "  -g, --game string")
		fmt.Fprintf(out, "    \tgame that created the save: %s (auto-detected when omitted)\n", strings.Join(sl2.Names(), ", "))
		fmt.Fprintln(out, "  -l, --list")
		fmt.Fprintln(out, "    \tlist occupied slots")
		fmt.Fprintln(out, "  -o, --output string")
		fmt.Fprintln(out, "    \toutput .sl2 path (default <input>_patched.sl2)")
		fmt.Fprintln(out, "  -n, --num int")
		fmt.Fprintf(out, "    \tnumber of souls/runes to set (default %d)\n", sl2.MaxTarget)
		fmt.Fprintln(out, "  -s, --slot int")
		fmt.Fprintln(out, "    \tslot to modify, -1 for all occupied slots (default -1)")
		fmt.Fprintln(out, "  -k, --keep-decrypted string")
		fmt.Fprintln(out, "    \tdirectory to write decrypted records to")
		fmt.Fprintln(out, "  -b, --backup")
		fmt.Fprintln(out, "    \twrite <input>.bak.zst before writing the output")
		fmt.Fprintln(out, "  --restore string")
		fmt.Fprintln(out, "    \trestore a .bak.zst backup to the -o path")
		fmt.Fprintln(out, "  --json")
		fmt.Fprintln(out, "    \tprint results as JSON")
		fmt.Fprintln(out, "  --watch")
		fmt.Fprintln(out, "    \tlist slots again whenever the save file is rewritten")
		fmt.Fprintln(out, "  -p, -w int")
		fmt.Fprintln(out, "    \tnumber of workers used to decrypt records (default 1)")
		fmt.Fprintln(out, "  -c, --config string")
		fmt.Fprintf(out, "    \tini file with default values (default %q)\n", DefaultConfigPath)
		fmt.Fprintln(out, "  -d, --debug")
		fmt.Fprintln(out, "    \tenable debug output")
		fmt.Fprintln(out, "  -v, --version")
		fmt.Fprintln(out, "    \tshow version information")
	}

	// タイトル
	fs.StringVar(&cfg.Game, "game", "", "game that created the save (dsr, ds2, ds3, er)")
	fs.StringVar(&cfg.Game, "g", "", "game that created the save (shorthand)")

	// スロット一覧
	fs.BoolVar(&cfg.List, "list", false, "list occupied slots")
	fs.BoolVar(&cfg.List, "l", false, "list occupied slots (shorthand)")

	// 出力先
	fs.StringVar(&cfg.OutputPath, "output", "", "output .sl2 path")
	fs.StringVar(&cfg.OutputPath, "o", "", "output .sl2 path (shorthand)")

	// 設定値
	fs.IntVar(&cfg.Num, "num", sl2.MaxTarget, "number of souls/runes to set")
	fs.IntVar(&cfg.Num, "n", sl2.MaxTarget, "number of souls/runes to set (shorthand)")

	// 対象スロット
	fs.IntVar(&cfg.Slot, "slot", -1, "slot to modify, -1 for all occupied slots")
	fs.IntVar(&cfg.Slot, "s", -1, "slot to modify (shorthand)")

	// 復号済みレコードの保存先
	fs.StringVar(&cfg.KeepDecrypted, "keep-decrypted", "", "directory to write decrypted records to")
	fs.StringVar(&cfg.KeepDecrypted, "k", "", "directory to write decrypted records to (shorthand)")

	// バックアップ
	fs.BoolVar(&cfg.Backup, "backup", false, "write <input>.bak.zst before writing the output")
	fs.BoolVar(&cfg.Backup, "b", false, "write <input>.bak.zst (shorthand)")
	fs.StringVar(&cfg.RestorePath, "restore", "", "restore a .bak.zst backup to the -o path")

	// 出力形式・監視
	fs.BoolVar(&cfg.JSON, "json", false, "print results as JSON")
	fs.BoolVar(&cfg.Watch, "watch", false, "list slots again whenever the save file is rewritten")

	// 並列数
	fs.IntVar(&cfg.Workers, "p", 1, "number of workers used to decrypt records")
	fs.IntVar(&cfg.Workers, "w", 1, "number of workers used to decrypt records")

	// 設定ファイル
	fs.StringVar(&cfg.ConfigPath, "config", DefaultConfigPath, "ini file with default values")
	fs.StringVar(&cfg.ConfigPath, "c", DefaultConfigPath, "ini file with default values (shorthand)")

	// デバッグモード
	fs.BoolVar(&cfg.DebugMode, "debug", false, "enable debug output")
	fs.BoolVar(&cfg.DebugMode, "d", false, "enable debug output (shorthand)")

	// バージョン表示
	fs.BoolVar(&cfg.ShowVersion, "version", false, "show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "show version information (shorthand)")

	return fs
}

// loadINI は設定ファイルの既定値のうち、コマンドラインで指定されなかった項目を反映します。
// 既定の設定ファイルが存在しない場合は何もしません。
func (c *Config) loadINI(fsys interfaces.FileSystem, set map[string]bool, explicit bool) error {
	if !fsys.FileExists(c.ConfigPath) {
		if explicit {
			return fmt.Errorf("%w: %s: %w", ErrLoadConfig, c.ConfigPath, fs.ErrNotExist)
		}
		return nil
	}

	data, err := fsys.ReadFile(c.ConfigPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoadConfig, c.ConfigPath, err)
	}
	file, err := ini.Load(data)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoadConfig, c.ConfigPath, err)
	}
	return c.applyINI(file.Section(ini.DefaultSection), set)
}

// applyINI はセクションの値を設定に反映します
func (c *Config) applyINI(sec *ini.Section, set map[string]bool) error {
	unset := func(names ...string) bool {
		for _, n := range names {
			if set[n] {
				return false
			}
		}
		return true
	}

	if sec.HasKey("game") && unset("game", "g") {
		c.Game = sec.Key("game").String()
	}
	if sec.HasKey("keep_decrypted") && unset("keep-decrypted", "k") {
		c.KeepDecrypted = sec.Key("keep_decrypted").String()
	}

	ints := []struct {
		key   string
		dst   *int
		flags []string
	}{
		{"num", &c.Num, []string{"num", "n"}},
		{"slot", &c.Slot, []string{"slot", "s"}},
		{"workers", &c.Workers, []string{"p", "w"}},
	}
	for _, f := range ints {
		if !sec.HasKey(f.key) || !unset(f.flags...) {
			continue
		}
		v, err := sec.Key(f.key).Int()
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrLoadConfig, f.key, err)
		}
		*f.dst = v
	}

	bools := []struct {
		key   string
		dst   *bool
		flags []string
	}{
		{"backup", &c.Backup, []string{"backup", "b"}},
		{"debug", &c.DebugMode, []string{"debug", "d"}},
		{"json", &c.JSON, []string{"json"}},
	}
	for _, f := range bools {
		if !sec.HasKey(f.key) || !unset(f.flags...) {
			continue
		}
		v, err := sec.Key(f.key).Bool()
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrLoadConfig, f.key, err)
		}
		*f.dst = v
	}

	return nil
}

// Validate は設定の組み合わせを検証します
func (c *Config) Validate() error {
	if c.Num < sl2.MinTarget || c.Num > sl2.MaxTarget {
		return fmt.Errorf("%w: %d", ErrInvalidNum, c.Num)
	}
	if c.Slot < -1 || c.Slot > sl2.SlotCount {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, c.Slot)
	}
	if c.Game != "" {
		if _, err := sl2.Lookup(c.Game); err != nil {
			return err
		}
	}

	if c.RestorePath != "" {
		if c.OutputPath == "" {
			return fmt.Errorf("%w: --restore", ErrMissingOutput)
		}
		return nil
	}

	if c.List && c.OutputPath != "" {
		return ErrListWithOutput
	}
	return nil
}

// HandleVersion はバージョン表示を処理します
func HandleVersion(showVersion bool) {
	if showVersion {
		fmt.Printf("bonfire version %s\n", Version)
		os.Exit(0)
	}
}
