package domain

import (
	"strings"
)

// FindCharacter は名前からキャラクター情報を特定します。大文字小文字は区別しません。
func (p *MangaPlan) FindCharacter(name string) *Character {
	if p == nil {
		return nil
	}
	for i := range p.Characters {
		if strings.EqualFold(p.Characters[i].Name, name) {
			res := p.Characters[i]
			return &res
		}
	}
	return nil
}

// CharacterNames はプランに宣言された順でキャラクター名を返します。
func (p *MangaPlan) CharacterNames() []string {
	names := make([]string, 0, len(p.Characters))
	for _, c := range p.Characters {
		names = append(names, c.Name)
	}
	return names
}

// CharactersIn は、テキスト中に名前が登場するキャラクターを宣言順で返します。
// 一致するキャラクターがいない場合は nil を返します。
func (p *MangaPlan) CharactersIn(texts ...string) []Character {
	joined := strings.ToLower(strings.Join(texts, " "))
	var found []Character
	for _, c := range p.Characters {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name != "" && strings.Contains(joined, name) {
			found = append(found, c)
		}
	}
	return found
}
