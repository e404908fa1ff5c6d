package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"studymate-backend/internal/models"
)

const (
	pdfFont     = "Helvetica"
	bodySize    = 12.0
	headingSize = 14.0
)

// ExportService renders study material into downloadable documents.
type ExportService struct {
	md goldmark.Markdown
}

func NewExportService() *ExportService {
	return &ExportService{md: goldmark.New()}
}

// RenderDocument lays out the notes under a centred title and, when quiz
// items are given, appends a "Quiz Review" section with each question and its
// correct answer. Markdown beyond paragraphs, emphasis and level-2 headings
// is written as plain text.
func (s *ExportService) RenderDocument(title, notesMarkdown string, quiz []models.QuizItem) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(true, 20)

	pdf.SetHeaderFunc(func() {
		pdf.SetFont(pdfFont, "B", 15)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
		pdf.Ln(10)
		pdf.SetFont(pdfFont, "", bodySize)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(pdfFont, "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()
	w := &pdfWriter{pdf: pdf, tr: tr}

	source := []byte(notesMarkdown)
	doc := s.md.Parser().Parse(text.NewReader(source))
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		w.block(n, source)
	}

	if len(quiz) > 0 {
		if err := s.writeQuizReview(w, quiz); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *ExportService) writeQuizReview(w *pdfWriter, quiz []models.QuizItem) error {
	w.pdf.Ln(6)
	w.setFont("B", headingSize)
	w.pdf.CellFormat(0, 8, "Quiz Review", "", 1, "L", false, 0, "")
	w.pdf.Ln(2)
	w.setFont("", bodySize)

	html := w.pdf.HTMLBasicNew()
	for i, q := range quiz {
		question, err := s.inlineHTML(q.Question)
		if err != nil {
			return err
		}
		answer, err := s.inlineHTML(q.CorrectAnswer)
		if err != nil {
			return err
		}
		fragment := fmt.Sprintf("%d. <b>Question:</b> %s<br><b>Answer:</b> %s<br><br>", i+1, question, answer)
		html.Write(w.lineHeight(), w.tr(fragment))
	}
	return nil
}

var htmlTagRewrite = strings.NewReplacer(
	"<p>", "", "</p>", "",
	"<strong>", "<b>", "</strong>", "</b>",
	"<em>", "<i>", "</em>", "</i>",
	"&quot;", `"`, "&amp;", "&", "&gt;", ">",
	// fpdf's basic HTML reader has no entities and would read '<' as a tag.
	"&lt;", "‹",
)

// inlineHTML renders a short Markdown string to the tag subset fpdf's basic
// HTML writer understands.
func (s *ExportService) inlineHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return strings.TrimSpace(htmlTagRewrite.Replace(buf.String())), nil
}

type pdfWriter struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	style string
	size  float64
}

func (w *pdfWriter) setFont(style string, size float64) {
	w.style = style
	w.size = size
	w.pdf.SetFont(pdfFont, style, size)
}

func (w *pdfWriter) lineHeight() float64 {
	_, unitSize := w.pdf.GetFontSize()
	return unitSize * 1.2
}

func (w *pdfWriter) write(s string) {
	if s == "" {
		return
	}
	w.pdf.Write(w.lineHeight(), w.tr(s))
}

func (w *pdfWriter) block(n ast.Node, source []byte) {
	switch node := n.(type) {
	case *ast.Paragraph:
		w.setFont("", bodySize)
		w.inline(node, source)
		w.pdf.Ln(w.lineHeight())
		w.pdf.Ln(2)
	case *ast.Heading:
		if node.Level != 2 {
			w.plain(node, source)
			return
		}
		w.pdf.Ln(4)
		w.setFont("B", headingSize)
		w.inline(node, source)
		w.pdf.Ln(w.lineHeight())
		w.setFont("", bodySize)
		w.pdf.Ln(2)
	default:
		w.plain(node, source)
	}
}

// inline writes the inline children of n, switching to bold or italic for
// emphasis. Nested emphasis combines the two.
func (w *pdfWriter) inline(n ast.Node, source []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			w.write(string(node.Segment.Value(source)))
			if node.HardLineBreak() {
				w.pdf.Ln(w.lineHeight())
			} else if node.SoftLineBreak() {
				w.write(" ")
			}
		case *ast.String:
			w.write(string(node.Value))
		case *ast.Emphasis:
			prevStyle, size := w.style, w.size
			mark := "I"
			if node.Level >= 2 {
				mark = "B"
			}
			if !strings.Contains(prevStyle, mark) {
				w.setFont(combineStyle(prevStyle, mark), size)
			}
			w.inline(node, source)
			w.setFont(prevStyle, size)
		default:
			w.inline(node, source)
		}
	}
}

func combineStyle(style, mark string) string {
	combined := style + mark
	if strings.Contains(combined, "B") && strings.Contains(combined, "I") {
		return "BI"
	}
	return combined
}

// plain writes any other block as unformatted text.
func (w *pdfWriter) plain(n ast.Node, source []byte) {
	var b strings.Builder
	collectText(n, source, &b)
	content := strings.TrimRight(b.String(), "\n")
	if strings.TrimSpace(content) == "" {
		return
	}
	w.setFont("", bodySize)
	w.pdf.MultiCell(0, w.lineHeight(), w.tr(content), "", "L", false)
	w.pdf.Ln(2)
}

func collectText(n ast.Node, source []byte, b *strings.Builder) {
	switch node := n.(type) {
	case *ast.Text:
		b.Write(node.Segment.Value(source))
		if node.SoftLineBreak() || node.HardLineBreak() {
			b.WriteByte('\n')
		}
		return
	case *ast.String:
		b.Write(node.Value)
		return
	case *ast.ListItem:
		b.WriteString("- ")
	}

	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(source))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		collectText(c, source, b)
	}
	if n.Type() == ast.TypeBlock && !strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}
}

// RenderFlashcardTable writes a Term,Definition table with every field
// quoted. Embedded double quotes are doubled; nothing else is escaped.
func (s *ExportService) RenderFlashcardTable(cards []models.Flashcard) []byte {
	lines := make([]string, 0, len(cards)+1)
	lines = append(lines, `"Term","Definition"`)
	for _, card := range cards {
		lines = append(lines, csvField(card.Term)+","+csvField(card.Definition))
	}
	return []byte(strings.Join(lines, "\n"))
}

func csvField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
