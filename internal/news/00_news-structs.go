package news

import "time"

// Item is a single digest entry collected from a feed or release watch.
type Item struct {
	Site      string    `json:"site"`
	Title     string    `json:"title"`
	Meta      string    `json:"meta"`
	URL       string    `json:"url"`
	Published time.Time `json:"published"`
	Translate bool      `json:"translate"`
}
