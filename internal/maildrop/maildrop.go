package maildrop

import "automailer/internal"

// Connector pulls county sales-data drop emails from a mailbox.
type Connector interface {
	FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error)
}
