package storage

import "time"

// Postbox is a user-created verse mailbox. Postboxes stay locked until the
// configured unlock date, when the sweep flips IsOpened.
type Postbox struct {
	ID          string // short UUID prefix, part of the shareable URL
	Nickname    string
	PrayerTopic string
	URL         string // path form: /postboxes/{id}
	IsOpened    bool
	CreatedAt   time.Time
}

// Postcard is one verse card sent to a postbox.
type Postcard struct {
	ID             string // UUID
	PostboxID      string
	TemplateID     int
	TemplateType   int
	TemplateName   string
	IsAnonymous    bool
	SenderName     string
	VerseReference string
	VerseText      string
	Message        string
	CreatedAt      time.Time
}
