package prompts

const (
	// ColorPanelSuffix はカラー作画時にパネルプロンプトへ付与する画風指定です。
	ColorPanelSuffix = ", manga style, vibrant colors, anime art style, professional manga artwork, colorful illustration"
	// MonochromePanelSuffix はモノクロ作画時にパネルプロンプトへ付与する画風指定です。
	MonochromePanelSuffix = ", manga style, monochrome, black and white, screentones, ink lines, high contrast, anime art style, professional manga artwork"

	// CharacterSheetTemplate はキャラクター参照シートの基本プロンプトです。
	CharacterSheetTemplate = "Character reference sheet, multiple views, %s, %s, manga style, character design, turnaround, white background, professional anime character sheet, detailed line art"
	colorSheetDirective      = ", full color, vibrant colors"
	monochromeSheetDirective = ", monochrome, black and white ink"

	pageHeaderColor      = "Full manga page, vibrant colors, high quality professional manga. "
	pageHeaderMonochrome = "Full manga page, black and white, high quality professional manga. "
	pageFooterColor      = "Manga style, colorful illustration, anime art style, panel borders clearly visible"
	pageFooterMonochrome = "Manga style, monochrome, screentones, ink lines, high contrast, anime art style, panel borders clearly visible"

	referenceNoteTemplate = "The attached images are character reference sheets for %s. Keep each character's face, hair, outfit and proportions consistent with their sheet."
)
