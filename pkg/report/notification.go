// pkg/report/notification.go
package report

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultRecipient receives data problem notifications
	DefaultRecipient = "tecnico@azienda.it"
	// MismatchProblem describes files whose identifiers disagree or are missing
	MismatchProblem = "CF non coincidenti o assenti nei documenti caricati."
)

// Notification is a prefilled email about a data problem
type Notification struct {
	Subject    string
	Body       string
	MailtoLink string
}

// ComposeNotification builds the email for a problem found in fileNames
func ComposeNotification(canonicalID, problem string, fileNames []string, recipient string) Notification {
	if recipient == "" {
		recipient = DefaultRecipient
	}
	subject := fmt.Sprintf("[ACTION REQUIRED] Problema dati CF %s", canonicalID)
	body := fmt.Sprintf("Ciao,\n\n"+
		"ho riscontrato un problema nei documenti caricati per il CF %s.\n"+
		"Dettagli: %s\n"+
		"File coinvolti: %s\n\n"+
		"Puoi verificare e correggere? Grazie.\n\n"+
		"Saluti,\nTeam DataHub",
		canonicalID, problem, strings.Join(fileNames, ", "))

	return Notification{
		Subject:    subject,
		Body:       body,
		MailtoLink: "mailto:" + recipient + "?subject=" + mailtoEscape(subject) + "&body=" + mailtoEscape(body),
	}
}

// mailtoEscape percent-encodes a header value; spaces become %20, not "+"
func mailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
