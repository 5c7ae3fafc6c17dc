package nav

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("nav")

// Store keys of the navigation state
const (
	KeyResultsQuery = "itemNavResultsQuery" // base64 of the results URL
	KeyTree         = "itemNavTree"         // JSON array of item ids
	KeyLastPage     = "itemNavLastPage"     // highest known page
)

// UnsupportedMarker marks results of virtual collections, which can not be navigated
const UnsupportedMarker = "/vc/"

var (
	// ErrNoResultsContext means no (decodable) results query is stored, navigation is off
	ErrNoResultsContext = errors.New("no results context")
	// ErrUnsupportedContext means the results come from a context without item navigation
	ErrUnsupportedContext = errors.New("results context does not support item navigation")
	// ErrMalformedURL means the current item can not be identified from its URL
	ErrMalformedURL = errors.New("malformed item url")
	// ErrStepAbandoned means a page boundary crossing failed and the state was restored
	ErrStepAbandoned = errors.New("navigation step abandoned")
)

// Direction of a step
type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Previous:
		return "previous"
	case Next:
		return "next"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts "previous", "prev" and "next"
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "previous", "prev":
		return Previous, nil
	case "next":
		return Next, nil
	default:
		return 0, fmt.Errorf("invalid direction %q, must be previous or next", s)
	}
}
