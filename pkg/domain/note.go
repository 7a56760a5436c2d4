package domain

import "time"

// UnknownEpisodeTitle is shown for notes whose episode no longer exists.
const UnknownEpisodeTitle = "Unknown Episode"

// Note is a user-authored annotation attached to exactly one episode.
//
// Deleting an episode does not delete its notes; such orphaned notes keep
// their EpisodeID and simply fail to resolve.
type Note struct {
	ID        int64     `bson:"_id" json:"id"`
	EpisodeID int64     `bson:"episode_id" json:"episode_id"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
