package project

import (
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"github.com/khoahotran/folio/internal/domain/profile"
	"github.com/khoahotran/folio/internal/domain/project"
	"github.com/khoahotran/folio/pkg/logger"
)

const maxFeedItems = 20

// ProjectSource is the read side the feed is rendered from, normally the
// public projects view.
type ProjectSource interface {
	Rows() []project.Project
}

type ProfileSource interface {
	Rows() []profile.Profile
}

type RSSUseCase struct {
	projects  ProjectSource
	profiles  ProfileSource
	publicURL string
	logger    logger.Logger
	now       func() time.Time
}

func NewRSSUseCase(projects ProjectSource, profiles ProfileSource, publicURL string, log logger.Logger) *RSSUseCase {
	return &RSSUseCase{
		projects:  projects,
		profiles:  profiles,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		logger:    log,
		now:       time.Now,
	}
}

func (uc *RSSUseCase) Execute() *feeds.Feed {
	owner := profile.New()
	if uc.profiles != nil {
		if rows := uc.profiles.Rows(); len(rows) > 0 {
			owner = rows[0]
		}
	}

	title := "Projects"
	if owner.DisplayName != "" {
		title = owner.DisplayName + " - Projects"
	}
	feed := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: uc.publicURL + "/projects"},
		Description: owner.Headline,
		Author:      &feeds.Author{Name: owner.DisplayName},
		Created:     uc.now(),
	}

	rows := uc.projects.Rows()
	if len(rows) > maxFeedItems {
		rows = rows[:maxFeedItems]
	}

	items := make([]*feeds.Item, 0, len(rows))
	for _, p := range rows {
		link := p.LiveLink
		if link == "" {
			link = uc.publicURL + "/projects/" + strconv.FormatInt(p.ID, 10)
		}
		item := &feeds.Item{
			Id:          strconv.FormatInt(p.ID, 10),
			Title:       p.Title,
			Link:        &feeds.Link{Href: link},
			Description: p.Description,
			Created:     p.CreatedAt,
			Updated:     p.UpdatedAt,
		}
		if p.ImageURL != "" {
			item.Enclosure = &feeds.Enclosure{Url: p.ImageURL, Type: "image/*", Length: "0"}
		}
		items = append(items, item)
	}
	feed.Items = items

	uc.logger.Debug("RSS feed generated", zap.Int("item_count", len(items)))
	return feed
}
