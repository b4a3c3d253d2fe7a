package sl2

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shiroemons/go-bonfire/pkg/bnd4"
)

// GuessTitle はファイル名からタイトルを推測します (例: DRAKS0005.sl2 → dsr)
func GuessTitle(filename string) (Title, bool) {
	base := strings.ToUpper(filepath.Base(filename))
	switch {
	case strings.HasPrefix(base, "DRAKS"):
		return DSR, true
	case strings.HasPrefix(base, "DS2SOFS"):
		return DS2, true
	case strings.HasPrefix(base, "DS3"):
		return DS3, true
	case strings.HasPrefix(base, "ER"):
		return ER, true
	}
	return 0, false
}

// Detect はセーブファイルの内容からタイトルを判別します。
// スロット一覧を持つレコードが復号でき、長さプレフィックスが本体に収まり、
// スロット一覧として解釈できるタイトルを候補とし、
// 暗号化ありの候補があれば暗号化なしの候補より優先します。
// それでも複数残った場合は nameHint (ファイル名) から推測します。
func Detect(data []byte, nameHint string) (Profile, error) {
	c, err := bnd4.Parse(data)
	if err != nil {
		return Profile{}, err
	}

	var encrypted, plain []Profile
	for _, t := range Titles() {
		p := ProfileOf(t)
		if !readable(c, p) {
			continue
		}
		if p.Encrypted() {
			encrypted = append(encrypted, p)
		} else {
			plain = append(plain, p)
		}
	}

	candidates := encrypted
	if len(candidates) == 0 {
		candidates = plain
	}

	switch len(candidates) {
	case 0:
		return Profile{}, fmt.Errorf("%w: 一致するタイトルがありません", ErrUnknownTitle)
	case 1:
		return candidates[0], nil
	}

	if t, ok := GuessTitle(nameHint); ok {
		for _, p := range candidates {
			if p.Title == t {
				return p, nil
			}
		}
	}

	names := make([]string, len(candidates))
	for i, p := range candidates {
		names[i] = p.Name
	}
	return Profile{}, fmt.Errorf("%w: 候補 %s", ErrAmbiguousTitle, strings.Join(names, ", "))
}

// readable はタイトル p としてスロット一覧を読めるかどうかを返します
func readable(c *bnd4.Container, p Profile) bool {
	rec, ok := c.Record(p.IndexRecord)
	if !ok {
		return false
	}
	pt, err := Decrypt(c, rec, p)
	if err != nil || pt.Truncated() {
		return false
	}
	_, err = ReadSlots(pt, p)
	return err == nil
}
