package api

import (
	"encoding/xml"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/statuswatch/statuswatch/pkg/models"
)

const rssItemLimit = 20

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Category    string `xml:"category"`
}

func (s *Server) getStatusRSS(w http.ResponseWriter, r *http.Request) {
	list, err := s.tracker.GetAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load incidents")
		return
	}

	if len(list) > rssItemLimit {
		list = list[:rssItemLimit]
	}

	items := make([]rssItem, 0, len(list))

	for _, inc := range list {
		items = append(items, rssItem{
			Title:       rssTitle(&inc),
			Description: fmt.Sprintf("%s | Status: %s | Impact: %s", inc.ServiceName, inc.Status, inc.Impact),
			Link:        s.siteURL + "#" + inc.ServiceID,
			GUID:        s.siteURL + "/incident/" + inc.ID,
			PubDate:     inc.StartedAt.UTC().Format(time.RFC1123),
			Category:    string(inc.Impact),
		})
	}

	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:         s.siteName + " - Incident Feed",
			Link:          s.siteURL,
			Description:   "Incident history for " + s.siteName,
			Language:      "en-us",
			LastBuildDate: time.Now().UTC().Format(time.RFC1123),
			Items:         items,
		},
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300, s-maxage=600")

	if _, err := w.Write([]byte(xml.Header)); err != nil {
		log.Printf("api: failed to write RSS header: %v", err)
		return
	}

	if err := xml.NewEncoder(w).Encode(feed); err != nil {
		log.Printf("api: failed to encode RSS feed: %v", err)
	}
}

func rssTitle(inc *models.Incident) string {
	if inc.Resolved() {
		return "Resolved: " + inc.Title
	}

	return inc.Title
}
