package domain

// TotalPanels はプラン全体のパネル数を返します。
func (p *MangaPlan) TotalPanels() int {
	total := 0
	for _, page := range p.Pages {
		total += len(page.Panels)
	}
	return total
}

// IDs はパネル ID をスライスの順序どおりに返します。
func (ps Panels) IDs() []int {
	ids := make([]int, 0, len(ps))
	for _, panel := range ps {
		ids = append(ids, panel.ID)
	}
	return ids
}

// PageNumbers はプランのページ番号を宣言順で返します。
func (p *MangaPlan) PageNumbers() []int {
	nums := make([]int, 0, len(p.Pages))
	for _, page := range p.Pages {
		nums = append(nums, page.PageNumber)
	}
	return nums
}
