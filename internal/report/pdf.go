// Package report renders finished interviews as PDF documents and mails
// them to the candidate.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/spigell/interview-coach/internal/interview"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	reportTitle = "Technical Interview Results"
	fontFamily  = "Helvetica"
	lineHeight  = 10
)

// The core PDF fonts only cover Latin-1, so text is folded to ASCII first.
var punctuation = strings.NewReplacer(
	"’", "'", "‘", "'",
	"“", `"`, "”", `"`,
	"–", "-", "—", "--",
)

func sanitize(text string) string {
	text = punctuation.Replace(text)

	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), text)
	if err == nil {
		text = folded
	}

	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, text)
}

// FileName is the name a report for rec is saved under.
func FileName(rec *interview.Record) string {
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(sanitize(rec.CandidateName))
	date := strings.ReplaceAll(rec.DateString(), ":", "-")
	return fmt.Sprintf("interview_results_%s_%s.pdf", name, date)
}

// Exporter writes PDF reports into a directory.
type Exporter struct {
	dir string
}

func NewExporter(dir string) *Exporter {
	if dir == "" {
		dir = "."
	}
	return &Exporter{dir: dir}
}

// Export writes the report for rec and returns its path.
func (e *Exporter) Export(rec *interview.Record) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	path := filepath.Join(e.dir, FileName(rec))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}

	if err := Render(f, rec); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing report file: %w", err)
	}
	return path, nil
}

// Render writes the PDF report for rec to w.
func Render(w io.Writer, rec *interview.Record) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(reportTitle, false)
	doc.AddPage()

	heading := func(size float64, text string) {
		doc.SetFont(fontFamily, "B", size)
		doc.CellFormat(0, lineHeight, sanitize(text), "", 1, "", false, 0, "")
	}
	line := func(text string) {
		doc.SetFont(fontFamily, "", 12)
		doc.CellFormat(0, lineHeight, sanitize(text), "", 1, "", false, 0, "")
	}
	para := func(text string) {
		doc.SetFont(fontFamily, "", 12)
		doc.MultiCell(0, lineHeight, sanitize(text), "", "", false)
	}

	doc.SetFont(fontFamily, "B", 16)
	doc.CellFormat(0, lineHeight, reportTitle, "", 1, "C", false, 0, "")
	doc.Ln(5)

	heading(12, "Candidate: "+rec.CandidateName)
	heading(12, "Date: "+rec.DateString())
	doc.Ln(5)

	heading(14, "Summary")
	line(fmt.Sprintf("Overall Score: %.1f/100", rec.AvgScore))
	line(fmt.Sprintf("Rating: %s", rec.Rating()))
	doc.Ln(5)

	heading(14, "Skills")
	title := cases.Title(language.English)
	for _, c := range rec.Skills {
		heading(12, title.String(c.Name))
		para(strings.Join(c.Skills, ", "))
	}
	doc.Ln(5)

	heading(14, "Questions and Evaluations")
	for i, ar := range rec.Answers {
		heading(12, fmt.Sprintf("Question %d: %s", i+1, rec.Questions[i].Text))
		para("Answer: " + ar.Answer)
		heading(12, fmt.Sprintf("Score: %d/100", ar.Evaluation.Score))
		para("Feedback: " + ar.Evaluation.Feedback)
		if len(ar.Evaluation.MissingConcepts) > 0 {
			heading(12, "Missing concepts:")
			for _, c := range ar.Evaluation.MissingConcepts {
				line("- " + c)
			}
		}
		doc.Ln(5)
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}
