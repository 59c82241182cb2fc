package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPlan は、プランがスキーマまたは構造上の制約を満たさない場合に返されます。
var ErrInvalidPlan = errors.New("invalid manga plan")

// rawPlan 以下の型は、必須フィールドの欠落を検出するためにポインタで受ける中間表現です。
type rawPlan struct {
	Characters *[]rawCharacter `json:"characters"`
	Pages      *[]rawPage      `json:"pages"`
}

type rawCharacter struct {
	Name       *string `json:"name"`
	VisualDesc *string `json:"visual_desc"`
}

type rawPage struct {
	PageNumber *int        `json:"page_number"`
	LayoutDesc *string     `json:"layout_desc"`
	Panels     *[]rawPanel `json:"panels"`
}

type rawPanel struct {
	ID           *int    `json:"id"`
	Description  *string `json:"description"`
	VisualPrompt *string `json:"visual_prompt"`
	Dialogue     *string `json:"dialogue"`
}

// ParsePlan は JSON バイト列を厳格にデコードし、検証済みの MangaPlan を返します。
// 未知のフィールド、必須フィールドの欠落、型の不一致、構造上の違反はすべて ErrInvalidPlan になります。
func ParsePlan(data []byte) (*MangaPlan, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var raw rawPlan
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: JSONのデコードに失敗しました: %v", ErrInvalidPlan, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: JSONの後に余分なデータがあります", ErrInvalidPlan)
	}

	plan, err := raw.toPlan()
	if err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// MarshalPlan はプランをインデント付き JSON に変換します。
func MarshalPlan(plan *MangaPlan) ([]byte, error) {
	if plan == nil {
		return nil, fmt.Errorf("%w: plan is nil", ErrInvalidPlan)
	}
	// nil のスライスは null になり ParsePlan で拒否されるため、空配列として出力する
	out := *plan
	if out.Characters == nil {
		out.Characters = []Character{}
	}
	if out.Pages == nil {
		out.Pages = []Page{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("プランのJSON変換に失敗しました: %w", err)
	}
	return append(data, '\n'), nil
}

func (r rawPlan) toPlan() (*MangaPlan, error) {
	var missing []string
	if r.Characters == nil {
		missing = append(missing, "characters")
	}
	if r.Pages == nil {
		missing = append(missing, "pages")
	}
	if len(missing) > 0 {
		return nil, missingFieldsError(missing)
	}

	plan := &MangaPlan{
		Characters: make([]Character, 0, len(*r.Characters)),
		Pages:      make([]Page, 0, len(*r.Pages)),
	}

	for i, rc := range *r.Characters {
		if rc.Name == nil {
			missing = append(missing, fmt.Sprintf("characters[%d].name", i))
		}
		if rc.VisualDesc == nil {
			missing = append(missing, fmt.Sprintf("characters[%d].visual_desc", i))
		}
		if rc.Name != nil && rc.VisualDesc != nil {
			plan.Characters = append(plan.Characters, Character{Name: *rc.Name, VisualDesc: *rc.VisualDesc})
		}
	}

	for i, rp := range *r.Pages {
		prefix := fmt.Sprintf("pages[%d]", i)
		if rp.PageNumber == nil {
			missing = append(missing, prefix+".page_number")
		}
		if rp.LayoutDesc == nil {
			missing = append(missing, prefix+".layout_desc")
		}
		if rp.Panels == nil {
			missing = append(missing, prefix+".panels")
			continue
		}

		page := Page{Panels: make([]Panel, 0, len(*rp.Panels))}
		if rp.PageNumber != nil {
			page.PageNumber = *rp.PageNumber
		}
		if rp.LayoutDesc != nil {
			page.LayoutDesc = *rp.LayoutDesc
		}

		for j, rpl := range *rp.Panels {
			pp := fmt.Sprintf("%s.panels[%d]", prefix, j)
			if rpl.ID == nil {
				missing = append(missing, pp+".id")
			}
			if rpl.Description == nil {
				missing = append(missing, pp+".description")
			}
			if rpl.VisualPrompt == nil {
				missing = append(missing, pp+".visual_prompt")
			}
			if rpl.Dialogue == nil {
				missing = append(missing, pp+".dialogue")
			}
			if rpl.ID == nil || rpl.Description == nil || rpl.VisualPrompt == nil || rpl.Dialogue == nil {
				continue
			}
			page.Panels = append(page.Panels, Panel{
				ID:           *rpl.ID,
				Description:  *rpl.Description,
				VisualPrompt: *rpl.VisualPrompt,
				Dialogue:     *rpl.Dialogue,
			})
		}
		plan.Pages = append(plan.Pages, page)
	}

	if len(missing) > 0 {
		return nil, missingFieldsError(missing)
	}
	return plan, nil
}

func missingFieldsError(fields []string) error {
	return fmt.Errorf("%w: 必須フィールドがありません: %s", ErrInvalidPlan, strings.Join(fields, ", "))
}

// Validate はプランの構造上の制約を検証します。
// 違反はまとめて1つのエラーとして報告します。
func (p *MangaPlan) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: plan is nil", ErrInvalidPlan)
	}

	var problems []string
	seenNames := make(map[string]struct{}, len(p.Characters))
	seenStems := make(map[string]string, len(p.Characters))
	for i, c := range p.Characters {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			problems = append(problems, fmt.Sprintf("characters[%d]: 名前が空です", i))
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seenNames[key]; dup {
			problems = append(problems, fmt.Sprintf("characters[%d]: 名前 %q が重複しています", i, name))
			continue
		}
		seenNames[key] = struct{}{}

		// 参照画像のファイル名は大文字小文字を区別しないファイルシステムでも一意である必要がある
		stem := strings.ToLower(c.FileStem())
		if other, dup := seenStems[stem]; dup {
			problems = append(problems, fmt.Sprintf("characters[%d]: 名前 %q は %q と同じ参照画像ファイル名になります", i, name, other))
		}
		seenStems[stem] = name
	}

	if len(p.Pages) == 0 {
		problems = append(problems, "pages: ページが1つもありません")
	}

	seenPages := make(map[int]struct{}, len(p.Pages))
	for i, page := range p.Pages {
		if page.PageNumber <= 0 {
			problems = append(problems, fmt.Sprintf("pages[%d]: page_number は正の整数である必要があります (%d)", i, page.PageNumber))
		} else if _, dup := seenPages[page.PageNumber]; dup {
			problems = append(problems, fmt.Sprintf("pages[%d]: page_number %d が重複しています", i, page.PageNumber))
		}
		seenPages[page.PageNumber] = struct{}{}

		if len(page.Panels) == 0 {
			problems = append(problems, fmt.Sprintf("pages[%d]: パネルが1つもありません", i))
		}

		seenPanels := make(map[int]struct{}, len(page.Panels))
		for j, panel := range page.Panels {
			if panel.ID <= 0 {
				problems = append(problems, fmt.Sprintf("pages[%d].panels[%d]: id は正の整数である必要があります (%d)", i, j, panel.ID))
			} else if _, dup := seenPanels[panel.ID]; dup {
				problems = append(problems, fmt.Sprintf("pages[%d].panels[%d]: id %d が重複しています", i, j, panel.ID))
			}
			seenPanels[panel.ID] = struct{}{}

			if strings.TrimSpace(panel.VisualPrompt) == "" {
				problems = append(problems, fmt.Sprintf("pages[%d].panels[%d]: visual_prompt が空です", i, j))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPlan, strings.Join(problems, "; "))
	}
	return nil
}
