// Package models はbonfireコマンドで使用するデータモデルを定義します
package models

// SlotInfo は使用中スロット1件の情報を表します
type SlotInfo struct {
	Slot     int
	Name     string
	Record   int      // キャラクターデータを持つレコード番号
	Currency []uint32 // 読み取れなかった場合は nil
	Err      error    // 通貨の読み取りに失敗した理由
}

// SaveInfo はセーブファイルの一覧表示用の情報を表します
type SaveInfo struct {
	Path        string
	Title       string // 短縮名 (dsr など)
	DisplayName string
	Size        int
	Records     int
	Slots       []SlotInfo
}

// SlotChange はスロット1件の書き換え結果を表します
type SlotChange struct {
	Slot   int
	Name   string
	Record int
	Before []uint32
	After  []uint32
}

// PatchSummary は書き換え処理の結果を表します
type PatchSummary struct {
	InputPath  string
	OutputPath string
	BackupPath string // バックアップを作成しなかった場合は空
	Title      string
	Target     uint32
	Changes    []SlotChange
}
