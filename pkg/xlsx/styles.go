package xlsx

import (
	"github.com/xuri/excelize/v2"

	"github.com/ruslano69/gridcompare/pkg/grid"
)

// border sides of a cell
const (
	borderLeft uint8 = 1 << iota
	borderTop
	borderRight
	borderBottom
)

type cellRef struct{ col, row int }

// styleKey is everything the format plan can say about one cell.
type styleKey struct {
	border    uint8
	alignLeft bool
}

// perimeter returns the border sides each edge cell of rg receives.
func perimeter(rg grid.Range) map[cellRef]uint8 {
	out := make(map[cellRef]uint8)
	for col := rg.FromCol; col <= rg.ToCol; col++ {
		out[cellRef{col, rg.FromRow}] |= borderTop
		out[cellRef{col, rg.ToRow}] |= borderBottom
	}
	for row := rg.FromRow; row <= rg.ToRow; row++ {
		out[cellRef{rg.FromCol, row}] |= borderLeft
		out[cellRef{rg.ToCol, row}] |= borderRight
	}
	return out
}

// styleCache registers each distinct styleKey once per workbook.
type styleCache struct {
	f   *excelize.File
	ids map[styleKey]int
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{f: f, ids: make(map[styleKey]int)}
}

func (c *styleCache) get(k styleKey) (int, error) {
	if id, ok := c.ids[k]; ok {
		return id, nil
	}

	style := &excelize.Style{}
	sides := []struct {
		bit  uint8
		name string
	}{
		{borderLeft, "left"},
		{borderTop, "top"},
		{borderRight, "right"},
		{borderBottom, "bottom"},
	}
	for _, s := range sides {
		if k.border&s.bit != 0 {
			style.Border = append(style.Border, excelize.Border{Type: s.name, Color: "000000", Style: 1})
		}
	}
	if k.alignLeft {
		style.Alignment = &excelize.Alignment{Horizontal: "left"}
	}

	id, err := c.f.NewStyle(style)
	if err != nil {
		return 0, err
	}
	c.ids[k] = id
	return id, nil
}
