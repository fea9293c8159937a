package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"bizdash/internal/models"
	"bizdash/internal/scheduler"
)

// Generator renders exports of the scheduler page.
type Generator interface {
	ScheduleReport(w io.Writer, data ScheduleData) error
}

// ReportGenerator uses a TTF font when FontPath is set and falls back to core Helvetica.
type ReportGenerator struct {
	FontPath string
	fontName string
}

type ScheduleData struct {
	Title       string
	Period      models.TimePeriod
	GeneratedAt time.Time
	Stats       models.Stats
	List        scheduler.ListView
}

func NewReportGenerator(fontPath string) *ReportGenerator {
	name := "Helvetica"
	if fontPath != "" {
		name = "DejaVu"
	}
	return &ReportGenerator{FontPath: fontPath, fontName: name}
}

var columns = []struct {
	title string
	width float64
}{
	{"Due", 22},
	{"Title", 62},
	{"Type", 26},
	{"Status", 22},
	{"Priority", 18},
	{"Assignee", 30},
}

func (g *ReportGenerator) ScheduleReport(w io.Writer, data ScheduleData) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(data.Title, true)
	pdf.SetAuthor("bizdash scheduler", false)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)

	tr := func(s string) string { return s }
	if g.FontPath != "" {
		pdf.AddUTF8Font(g.fontName, "", g.FontPath)
		pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
	} else {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	// ===== Header
	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, tr(data.Title), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Period: %s   Generated: %s",
		data.Period, data.GeneratedAt.Format("02.01.2006 15:04"))), "", 1, "L", false, 0, "")
	g.hr(pdf)

	// ===== Stats
	st := data.Stats
	g.kvLine(pdf, tr, "Total", fmt.Sprintf("%d", st.Total))
	g.kvLine(pdf, tr, "Overdue", fmt.Sprintf("%d", st.Overdue))
	g.kvLine(pdf, tr, "Due today", fmt.Sprintf("%d", st.DueToday))
	g.kvLine(pdf, tr, "Due this week", fmt.Sprintf("%d", st.DueThisWeek))
	g.kvLine(pdf, tr, "Completion", fmt.Sprintf("%d%%", st.CompletionRate))
	g.hr(pdf)

	// ===== Items
	if data.List.Grouped {
		for _, grp := range data.List.Groups {
			pdf.SetFont(g.fontName, "B", 12)
			pdf.CellFormat(0, 8, tr(fmt.Sprintf("%s (%d)", grp.Title, len(grp.Rows))), "", 1, "L", false, 0, "")
			g.table(pdf, tr, grp.Rows)
			pdf.Ln(2)
		}
	} else {
		g.table(pdf, tr, data.List.Rows)
	}
	if len(data.List.Rows) == 0 && len(data.List.Groups) == 0 {
		pdf.SetFont(g.fontName, "", 11)
		pdf.CellFormat(0, 8, tr("Nothing scheduled in this period."), "", 1, "L", false, 0, "")
	}

	return pdf.Output(w)
}

func (g *ReportGenerator) table(pdf *gofpdf.Fpdf, tr func(string) string, rows []scheduler.ListRow) {
	if len(rows) == 0 {
		return
	}
	pdf.SetFont(g.fontName, "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for _, c := range columns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(g.fontName, "", 9)
	for _, r := range rows {
		it := r.Item
		assignee := it.AssignedToName
		if assignee == "" {
			assignee = it.AssignedTo
		}
		cells := []string{
			it.DueDate.Format("02.01.2006"),
			it.Title,
			string(it.Type),
			string(r.DisplayStatus),
			string(it.Priority),
			assignee,
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, 6, fit(pdf, tr(cells[i]), c.width-2), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// fit trims s so it renders within width mm.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, tr func(string) string, key, val string) {
	pdf.SetFont(g.fontName, "B", 10)
	pdf.CellFormat(40, 6, tr(key+":"), "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, tr(val), "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(15, y, 282, y)
	pdf.SetY(y + 2)
}
