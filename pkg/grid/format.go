package grid

import "fmt"

// Directive is a visual instruction for the workbook writer.
type Directive int

const (
	// DirectiveAlignLeft left-aligns every cell in the range.
	DirectiveAlignLeft Directive = iota
	// DirectiveBorderBox draws one rectangle around the range (outer edges only).
	DirectiveBorderBox
)

func (d Directive) String() string {
	switch d {
	case DirectiveAlignLeft:
		return "align-left"
	case DirectiveBorderBox:
		return "border-box"
	default:
		return fmt.Sprintf("Directive(%d)", int(d))
	}
}

// Range is an inclusive rectangle of one-based cells.
type Range struct {
	FromCol, FromRow int
	ToCol, ToRow     int
}

// Ref returns "B1:D5".
func (r Range) Ref() string {
	return Cell(r.FromCol, r.FromRow) + ":" + Cell(r.ToCol, r.ToRow)
}

// Contains reports whether (col, row) lies inside r.
func (r Range) Contains(col, row int) bool {
	return col >= r.FromCol && col <= r.ToCol && row >= r.FromRow && row <= r.ToRow
}

// Format tags a range with a directive.
type Format struct {
	Directive Directive
	Range     Range
}

// FormatPlan lists the formatting of the Compare sheet in application order.
type FormatPlan struct {
	Items []Format
}

// Borders returns only the border directives.
func (p *FormatPlan) Borders() []Range {
	var out []Range
	for _, it := range p.Items {
		if it.Directive == DirectiveBorderBox {
			out = append(out, it.Range)
		}
	}
	return out
}

// PlanFormat left-aligns the sub-header row and boxes each field triplet
// from row 1 down to the last data row.
func PlanFormat(addr *Address, fields []string) (*FormatPlan, error) {
	if len(fields) != addr.Fields() {
		return nil, fmt.Errorf("%w: %d fields, address has %d", ErrAddressMismatch, len(fields), addr.Fields())
	}

	plan := &FormatPlan{Items: make([]Format, 0, 1+len(fields))}
	plan.Items = append(plan.Items, Format{
		Directive: DirectiveAlignLeft,
		Range: Range{
			FromCol: KeyColumn, FromRow: SubHeaderRow,
			ToCol: addr.LastColumn(), ToRow: SubHeaderRow,
		},
	})

	for i := range fields {
		plan.Items = append(plan.Items, Format{
			Directive: DirectiveBorderBox,
			Range: Range{
				FromCol: addr.Column(i, RoleOriginal), FromRow: SuperHeaderRow,
				ToCol: addr.Column(i, RoleCompare), ToRow: addr.LastRow(),
			},
		})
	}

	return plan, nil
}
