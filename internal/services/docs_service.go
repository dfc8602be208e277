package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"helpdesk/internal/domain"
	"helpdesk/internal/domain/models"
	"helpdesk/internal/query"
	"helpdesk/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders a ticket transcript as PDF for staff.
type DocsService struct {
	Deps
	RequestID string
	Loader    func(ctx context.Context, ticketID domain.ID) (transcriptData, error)
	Now       func() time.Time
}

type transcriptData struct {
	Ticket   models.Ticket
	Comments []models.Comment
	Notes    []models.Note
	History  []models.History
}

func (s DocsService) Transcript(ctx context.Context, ticketID domain.ID) ([]byte, string, error) {
	data, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, "", err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	out, name, err := buildTranscriptPDF(data, now())
	if err != nil {
		return nil, "", domain.InternalError{Msg: "failed to render transcript", Err: err}
	}
	utils.LogEvent(s.RequestID, "docs", "transcript", fmt.Sprintf("ticket_id=%d bytes=%d", ticketID, len(out)))
	return out, name, nil
}

func (s DocsService) load(ctx context.Context, ticketID domain.ID) (transcriptData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, ticketID)
	}
	var out transcriptData
	t, err := TicketService{Deps: s.Deps, RequestID: s.RequestID}.load(ctx, ticketID)
	if err != nil {
		return out, err
	}
	out.Ticket = t

	byTicket := query.Equal("ticket_id", ticketID)
	oldest := query.Order{Column: "created_at", Direction: query.Asc}
	if out.Comments, err = s.comments().FindAll(ctx, byTicket, oldest); err != nil {
		return out, err
	}
	if err := s.hydrateComments(ctx, out.Comments); err != nil {
		return out, err
	}
	if out.Notes, err = s.notes().FindAll(ctx, byTicket, oldest); err != nil {
		return out, err
	}
	if err := s.hydrateNotes(ctx, out.Notes); err != nil {
		return out, err
	}
	if out.History, err = s.histories().FindAll(ctx, byTicket, oldest); err != nil {
		return out, err
	}
	return out, nil
}

func buildTranscriptPDF(d transcriptData, now time.Time) ([]byte, string, error) {
	t := d.Ticket
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Ticket #%d", t.ID), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, fmt.Sprintf("TICKET #%d", t.ID))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		fmt.Sprintf("Title       : %s", safe(t.Title, "-")),
		fmt.Sprintf("Status      : %s", t.Status),
		fmt.Sprintf("Priority    : %s", t.Priority),
		fmt.Sprintf("Category    : %s", t.Category),
		fmt.Sprintf("Opened by   : %s", personName(t.User)),
		fmt.Sprintf("Assigned to : %s", personName(t.AssignedToUser)),
		fmt.Sprintf("Created     : %s", utils.FormatDateTime(t.CreatedAt)),
		fmt.Sprintf("Printed     : %s", utils.FormatDateTime(now)),
	}
	for _, l := range lines {
		pdf.Cell(0, 6, l)
		pdf.Ln(6)
	}
	pdf.Ln(4)
	pdf.MultiCell(0, 6, safe(t.Description, "(no description)"), "", "", false)

	section(pdf, fmt.Sprintf("Comments (%d)", len(d.Comments)))
	for _, c := range d.Comments {
		entry(pdf, fmt.Sprintf("%s - %s", utils.FormatDateTime(c.CreatedAt), personName(c.Author)), c.Content)
	}

	section(pdf, fmt.Sprintf("Internal notes (%d)", len(d.Notes)))
	for _, n := range d.Notes {
		entry(pdf, fmt.Sprintf("%s - %s", utils.FormatDateTime(n.CreatedAt), personName(n.Agent)), n.Content)
	}

	section(pdf, fmt.Sprintf("History (%d)", len(d.History)))
	pdf.SetFont("Helvetica", "", 10)
	for _, h := range d.History {
		pdf.MultiCell(0, 5, fmt.Sprintf("%s  %s", utils.FormatDateTime(h.CreatedAt), h.Description), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("TICKET_%d_%s.pdf", t.ID, safeFilenamePart(t.Title))
	return buf.Bytes(), filename, nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
}

func entry(pdf *gofpdf.Fpdf, header, body string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 5, header)
	pdf.Ln(5)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, safe(body, "-"), "", "", false)
	pdf.Ln(2)
}

func personName(u *models.UserSummary) string {
	if u == nil {
		return "-"
	}
	name := utils.NormalizeSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return fmt.Sprintf("%s <%s>", name, u.Email)
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
