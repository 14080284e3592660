package notify

import (
	"sync"
	"time"

	"github.com/llehouerou/aurora/internal/mediabridge"
)

const (
	trackIcon   = "audio-x-generic"
	trackExpire = 5 * time.Second
)

var _ mediabridge.Surface = (*Surface)(nil)

// Surface announces each new track, updating a single notification in place.
// The notification is dismissed when playback clears.
type Surface struct {
	notifier Notifier

	mu        sync.Mutex
	lastID    uint32
	lastTrack string
}

// NewSurface wraps n as a media surface.
func NewSurface(n Notifier) *Surface {
	return &Surface{notifier: n}
}

// SetHandlers implements mediabridge.Surface. Notifications carry no actions.
func (s *Surface) SetHandlers(mediabridge.Handlers) error {
	return nil
}

// Publish implements mediabridge.Surface.
func (s *Surface) Publish(np mediabridge.NowPlaying) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if np.TrackID == "" {
		s.lastTrack = ""
		if s.lastID == 0 {
			return nil
		}
		id := s.lastID
		s.lastID = 0
		return s.notifier.Dismiss(id)
	}
	if np.TrackID == s.lastTrack {
		return nil
	}
	s.lastTrack = np.TrackID

	id, err := s.notifier.Notify(Notification{
		Summary:  np.Title,
		Body:     np.Artist,
		Icon:     trackIcon,
		Expire:   trackExpire,
		Replaces: s.lastID,
		Urgency:  UrgencyLow,
	})
	if err != nil {
		return err
	}
	s.lastID = id
	return nil
}
