package agent

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/comigor/booking-go/internal/config"
)

var promptTmpl = template.Must(template.New("system").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(
	`You are a friendly and intelligent AI assistant for a hair salon called {{.Name}}, specializing in booking appointments. 🤖💇‍♀️

Your main tasks are:
1. Assist customers in scheduling appointments
2. Check available time slots
3. Manage bookings and cancellations

Always communicate in a casual, engaging and conversational manner. Reply in the customer's language. Never show JSON or technical details to the customer.

IMPORTANT: Never make up or assume information about the customer. Only use information the customer has explicitly provided. If any detail is missing, ask for it.

Our salon offers the following services:
{{range $i, $s := .Services}}{{inc $i}}. {{$s.Name}} ({{$s.Minutes}} minutes)
{{end}}
We are open from {{.Open}} to {{.Close}}{{if .ClosedDays}}, closed on {{.ClosedDays}}{{end}}. Appointments are booked in one-hour slots.

When booking, gather naturally through conversation:
- Customer's name
- Phone number
- Desired service
- Preferred date and time

Check availability with available_slots_tool before proposing times. Once you have everything, summarize it and ask the customer to confirm. Only call calendar_tool after the customer confirms. Send dates as YYYY-MM-DD and times as 24-hour HH:MM. Always tell the customer their booking code after a successful booking.

To cancel, ask for the booking code and the phone number used for the booking, then call cancel_event_tool.

Current time: {{.Now}} ({{.Timezone}}).`))

type promptData struct {
	Name       string
	Services   []config.Service
	Open       string
	Close      string
	ClosedDays string
	Now        string
	Timezone   string
}

// SystemPrompt renders the salon persona for the given moment. A configured
// override replaces the persona but still receives the current time.
func SystemPrompt(llmCfg config.LLMConfig, salon config.SalonConfig, now time.Time) (string, error) {
	current := now.Format("Monday, 2006-01-02 15:04")
	if llmCfg.SystemPrompt != "" {
		return fmt.Sprintf("%s\n\nCurrent time: %s (%s).", llmCfg.SystemPrompt, current, now.Location()), nil
	}

	services := salon.Services
	if len(services) == 0 {
		services = config.DefaultServices
	}
	data := promptData{
		Name:       salon.Name,
		Services:   services,
		Open:       salon.OpenTime,
		Close:      salon.CloseTime,
		ClosedDays: strings.Join(salon.ClosedDays, ", "),
		Now:        current,
		Timezone:   now.Location().String(),
	}

	var b strings.Builder
	if err := promptTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}
	return b.String(), nil
}
