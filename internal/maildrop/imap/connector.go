// Package imap reads drop mail over plain IMAP for agencies whose mailbox
// is not on Gmail.
package imap

import (
	"crypto/tls"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"

	"automailer/internal"
	"automailer/internal/config"
)

type Connector struct {
	host         string
	port         int
	secure       bool
	user         string
	password     string
	markSeen     bool
	lookbackDays int
}

func NewConnector(cfg config.Config) (*Connector, error) {
	if err := cfg.Require("IMAP_HOST", cfg.IMAPHost); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_USER", cfg.IMAPUser); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_PASSWORD", cfg.IMAPPassword); err != nil {
		return nil, err
	}

	return &Connector{
		host:         cfg.IMAPHost,
		port:         cfg.IMAPPort,
		secure:       cfg.IMAPSecure,
		user:         cfg.IMAPUser,
		password:     cfg.IMAPPassword,
		markSeen:     cfg.IMAPMarkSeen,
		lookbackDays: cfg.IMAPLookbackDays,
	}, nil
}

// FetchInbox reads unseen messages within the lookback window from the named
// folder, newest last. Older unseen mail is left alone: drops that sat
// unread that long were handled out of band or abandoned. With markSeen on,
// the whole batch is flagged after a clean read so the next cycle skips it
// even when processing failed.
func (c *Connector) FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error) {
	client, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer client.Logout()

	if err := client.Login(c.user, c.password); err != nil {
		return nil, err
	}
	if _, err := client.Select(label, false); err != nil {
		return nil, err
	}

	ids, err := c.searchDrops(client, max)
	if err != nil || len(ids) == 0 {
		return nil, err
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchInternalDate, imap.FetchUid, section.FetchItem()}
	messages := make(chan *imap.Message, len(ids))
	fetchDone := make(chan error, 1)
	go func() { fetchDone <- client.Fetch(seqset, items, messages) }()

	out := make([]internal.FetchedMailMessage, 0, len(ids))
	fetched := new(imap.SeqSet)
	for msg := range messages {
		drop, ok, err := readMessage(msg, section)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, drop)
		fetched.AddNum(msg.SeqNum)
	}

	if err := <-fetchDone; err != nil {
		return nil, err
	}

	if c.markSeen && !fetched.Empty() {
		op := imap.FormatFlagsOp(imap.AddFlags, true)
		if err := client.Store(fetched, op, []interface{}{imap.SeenFlag}, nil); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (c *Connector) dial() (*imapclient.Client, error) {
	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	if c.secure {
		return imapclient.DialTLS(addr, &tls.Config{ServerName: c.host})
	}
	return imapclient.Dial(addr)
}

func (c *Connector) searchDrops(client *imapclient.Client, max int) ([]uint32, error) {
	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	if c.lookbackDays > 0 {
		criteria.Since = time.Now().AddDate(0, 0, -c.lookbackDays)
	}

	ids, err := client.Search(criteria)
	if err != nil {
		return nil, err
	}
	if len(ids) > max {
		ids = ids[len(ids)-max:]
	}
	return ids, nil
}

func readMessage(msg *imap.Message, section *imap.BodySectionName) (internal.FetchedMailMessage, bool, error) {
	if msg == nil {
		return internal.FetchedMailMessage{}, false, nil
	}
	body := msg.GetBody(section)
	if body == nil {
		return internal.FetchedMailMessage{}, false, nil
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return internal.FetchedMailMessage{}, false, err
	}

	messageID := ""
	subject := ""
	from := ""
	if msg.Envelope != nil {
		messageID = msg.Envelope.MessageId
		subject = msg.Envelope.Subject
		from = formatAddresses(msg.Envelope.From)
	}
	if messageID == "" {
		messageID = fmt.Sprintf("imap-%d", msg.Uid)
	}

	received := time.Now().UTC().Format(time.RFC3339)
	if !msg.InternalDate.IsZero() {
		received = msg.InternalDate.UTC().Format(time.RFC3339)
	}

	return internal.FetchedMailMessage{
		Provider:   "imap",
		MessageID:  messageID,
		Subject:    subject,
		From:       from,
		ReceivedAt: received,
		Raw:        raw,
	}, true, nil
}

func formatAddresses(addrs []*imap.Address) string {
	if len(addrs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a == nil {
			continue
		}
		email := strings.Trim(strings.Join([]string{a.MailboxName, a.HostName}, "@"), "@")
		if a.PersonalName != "" {
			parts = append(parts, fmt.Sprintf("%s <%s>", a.PersonalName, email))
		} else {
			parts = append(parts, email)
		}
	}
	return strings.Join(parts, ", ")
}
