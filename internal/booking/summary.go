package booking

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/wolfman30/pochita-booking/internal/format"
)

// Summary is the render-ready recap shown before and after confirmation.
type Summary struct {
	Step         string `json:"step"`
	Service      string `json:"service"`
	Veterinarian string `json:"veterinarian"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Pet          string `json:"pet"`
	Reason       string `json:"reason"`
	Text         string `json:"text"`
	WhatsAppURL  string `json:"whatsapp_url,omitempty"`
}

// Summarize builds the recap for s. whatsAppNumber is the clinic number,
// digits only; when set the recap carries a share link.
func Summarize(s *Session, clinicName, whatsAppNumber string) Summary {
	sum := Summary{
		Step:    s.Step.String(),
		Service: valueOrNA(s.ServiceLabel),
		Pet:     "N/A",
		Reason:  s.reason(),
	}
	sum.Veterinarian = "N/A"
	if s.Veterinarian != nil {
		sum.Veterinarian = valueOrNA(s.Veterinarian.Name)
	}
	sum.Date = "N/A"
	if t, err := format.ParseDate(s.Date); err == nil {
		sum.Date = format.LongDateWithWeekday(t)
	}
	sum.Time = "N/A"
	if s.Slot != nil {
		sum.Time = s.Slot.Label()
	}
	if s.Pet != nil {
		sum.Pet = valueOrNA(s.Pet.Name)
	}
	sum.Text = FormatSummary(sum, clinicName)
	if whatsAppNumber != "" {
		sum.WhatsAppURL = "https://wa.me/" + whatsAppNumber + "?text=" + url.QueryEscape(sum.Text)
	}
	return sum
}

// FormatSummary renders the recap as plain text.
func FormatSummary(sum Summary, clinicName string) string {
	var b strings.Builder
	if clinicName != "" {
		b.WriteString(fmt.Sprintf("Cita en %s\n", clinicName))
	}
	b.WriteString(fmt.Sprintf("Servicio: %s\n", sum.Service))
	b.WriteString(fmt.Sprintf("Veterinario: %s\n", sum.Veterinarian))
	b.WriteString(fmt.Sprintf("Fecha: %s\n", sum.Date))
	b.WriteString(fmt.Sprintf("Horario: %s\n", sum.Time))
	b.WriteString(fmt.Sprintf("Mascota: %s\n", sum.Pet))
	b.WriteString(fmt.Sprintf("Motivo: %s\n", sum.Reason))
	return b.String()
}

func valueOrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
