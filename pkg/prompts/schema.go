package prompts

import "google.golang.org/genai"

// PlanSchema はプランナーの応答を制約する JSON スキーマを返します。
// すべてのフィールドが必須で、プロパティの順序も固定します。
func PlanSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	integer := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeInteger, Description: desc}
	}

	panel := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":            integer("Panel number within the page, starting at 1"),
			"description":   str("What happens in this panel"),
			"visual_prompt": str("Detailed visual description for image generation"),
			"dialogue":      str("Character dialogue or narration, empty if silent"),
		},
		Required:         []string{"id", "description", "visual_prompt", "dialogue"},
		PropertyOrdering: []string{"id", "description", "visual_prompt", "dialogue"},
	}

	page := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"page_number": integer("Page number, starting at 1"),
			"layout_desc": str("Description of the overall page layout and flow"),
			"panels":      {Type: genai.TypeArray, Items: panel},
		},
		Required:         []string{"page_number", "layout_desc", "panels"},
		PropertyOrdering: []string{"page_number", "layout_desc", "panels"},
	}

	character := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":        str("Character name"),
			"visual_desc": str("Detailed visual description: appearance, clothing, hair, eyes"),
		},
		Required:         []string{"name", "visual_desc"},
		PropertyOrdering: []string{"name", "visual_desc"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"characters": {Type: genai.TypeArray, Items: character},
			"pages":      {Type: genai.TypeArray, Items: page},
		},
		Required:         []string{"characters", "pages"},
		PropertyOrdering: []string{"characters", "pages"},
	}
}
