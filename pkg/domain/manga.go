package domain

// MangaPlan はプランナーが生成する漫画全体の構成案です。
// 検証済みのプランは以降の工程で読み取り専用として扱います。
type MangaPlan struct {
	Characters []Character `json:"characters"`
	Pages      []Page      `json:"pages"`
}

// Page は漫画の1ページ分の構成（レイアウト指示と順序付きパネル）を保持します。
type Page struct {
	PageNumber int     `json:"page_number"`
	LayoutDesc string  `json:"layout_desc"`
	Panels     []Panel `json:"panels"`
}

// Panel は1コマ分のシーン説明、作画プロンプト、セリフを保持します。
type Panel struct {
	ID           int    `json:"id"`
	Description  string `json:"description"`
	VisualPrompt string `json:"visual_prompt"`
	Dialogue     string `json:"dialogue"`
}

// Panels はパネルのスライスに対するヘルパーを提供するための型です。
type Panels []Panel
