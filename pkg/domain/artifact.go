package domain

// CharacterReference はキャラクターデザイン工程で生成された参照画像です。
type CharacterReference struct {
	Name     string
	Path     string
	Data     []byte
	MIMEType string
}

// PanelArtifact はパネルモードで生成された1コマ分の画像です。
type PanelArtifact struct {
	PageNumber int
	PanelID    int
	Path       string
	Data       []byte
	MIMEType   string
}

// PageArtifact は1ページ分の成果物です。
// ページモードでは Data にページ画像が入り、パネルモードでは組版前の Panels が入ります。
type PageArtifact struct {
	PageNumber int
	Path       string
	Data       []byte
	MIMEType   string
	Panels     []PanelArtifact
}

// HasImage はページ画像が確定しているかどうかを返します。
func (a PageArtifact) HasImage() bool {
	return len(a.Data) > 0
}

// MangaDocument は最終的に出力された PDF の情報です。
type MangaDocument struct {
	Path      string
	PageCount int
}
