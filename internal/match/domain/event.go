package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KTGlem/GameMoments/internal/id"
)

// Side identifies which team an event is attributed to.
type Side string

const (
	// SidePFC is the logging team's own side.
	SidePFC Side = "PFC"
	// SideOpp is the opponent side.
	SideOpp Side = "OPP"
)

// Family identifies the base kind of a match event.
type Family string

// Event families.
const (
	FamilyGoalKick Family = "GK"
	FamilyCorner   Family = "CK"
	FamilyFreeKick Family = "FK"
	FamilyKickoff  Family = "KO"
	FamilySideout  Family = "SO"
	FamilyGoal     Family = "GOAL"
)

// Code tags one logged occurrence with a family and a side.
// The vocabulary is closed: exactly the cross product of the six families
// and the two sides is valid.
type Code string

const (
	CodeGoalKickPFC Code = "GK_PFC"
	CodeGoalKickOpp Code = "GK_OPP"
	CodeCornerPFC   Code = "CK_PFC"
	CodeCornerOpp   Code = "CK_OPP"
	CodeFreeKickPFC Code = "FK_PFC"
	CodeFreeKickOpp Code = "FK_OPP"
	CodeKickoffPFC  Code = "KO_PFC"
	CodeKickoffOpp  Code = "KO_OPP"
	CodeSideoutPFC  Code = "SO_PFC"
	CodeSideoutOpp  Code = "SO_OPP"
	CodeGoalPFC     Code = "GOAL_PFC"
	CodeGoalOpp     Code = "GOAL_OPP"
)

var (
	// ErrInvalidCode indicates an event code outside the fixed vocabulary.
	ErrInvalidCode = errors.New("event code is not valid")
	// ErrInvalidHalf indicates a half other than 1 or 2.
	ErrInvalidHalf = errors.New("half must be 1 or 2")
	// ErrMissingGameID indicates an event without an owning game.
	ErrMissingGameID = errors.New("game id is required")
)

var familyLabels = map[Family]string{
	FamilyGoalKick: "Goal Kick",
	FamilyCorner:   "Corner",
	FamilyFreeKick: "Free Kick",
	FamilyKickoff:  "Kickoff",
	FamilySideout:  "Sideout",
	FamilyGoal:     "Goal",
}

// FamilyLabel returns the human-readable family name and whether the
// family is one of the six known kinds.
func FamilyLabel(family Family) (string, bool) {
	label, ok := familyLabels[family]
	return label, ok
}

// Codes returns the full closed vocabulary in family-major order.
func Codes() []Code {
	return []Code{
		CodeGoalKickPFC, CodeGoalKickOpp,
		CodeCornerPFC, CodeCornerOpp,
		CodeFreeKickPFC, CodeFreeKickOpp,
		CodeKickoffPFC, CodeKickoffOpp,
		CodeSideoutPFC, CodeSideoutOpp,
		CodeGoalPFC, CodeGoalOpp,
	}
}

// Family returns the base-kind prefix of the code.
func (c Code) Family() Family {
	value := string(c)
	if i := strings.IndexByte(value, '_'); i >= 0 {
		return Family(value[:i])
	}
	return Family(value)
}

// Side returns the side suffix of the code.
func (c Code) Side() Side {
	value := string(c)
	if i := strings.IndexByte(value, '_'); i >= 0 {
		return Side(value[i+1:])
	}
	return ""
}

// IsValid reports whether the code belongs to the fixed vocabulary.
func (c Code) IsValid() bool {
	_, ok := familyLabels[c.Family()]
	if !ok {
		return false
	}
	side := c.Side()
	return side == SidePFC || side == SideOpp
}

// IsGoal reports whether the code records a goal for either side.
func (c Code) IsGoal() bool {
	return c == CodeGoalPFC || c == CodeGoalOpp
}

// Label returns the human-readable form of the code, e.g. "Goal — PFC".
func (c Code) Label() string {
	family, ok := familyLabels[c.Family()]
	if !ok {
		return string(c)
	}
	return family + " — " + string(c.Side())
}

// Event represents one logged occurrence within a game.
//
// Half is fixed at creation; time adjustment rewrites HalfSeconds only.
type Event struct {
	ID          string
	GameID      string
	Half        int
	HalfSeconds int
	Code        Code
	CreatedAt   time.Time
}

// CreateEventInput describes an event snapshot taken at logging time.
type CreateEventInput struct {
	GameID      string
	Half        int
	HalfSeconds int
	Code        Code
}

// CreateEvent creates a new event with a generated ID and creation timestamp.
// HalfSeconds is clamped to zero from below.
func CreateEvent(input CreateEventInput, now func() time.Time, idGenerator func() (string, error)) (Event, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if strings.TrimSpace(input.GameID) == "" {
		return Event{}, ErrMissingGameID
	}
	if input.Half != 1 && input.Half != 2 {
		return Event{}, ErrInvalidHalf
	}
	if !input.Code.IsValid() {
		return Event{}, ErrInvalidCode
	}
	if input.HalfSeconds < 0 {
		input.HalfSeconds = 0
	}

	eventID, err := idGenerator()
	if err != nil {
		return Event{}, fmt.Errorf("generate event id: %w", err)
	}

	return Event{
		ID:          eventID,
		GameID:      input.GameID,
		Half:        input.Half,
		HalfSeconds: input.HalfSeconds,
		Code:        input.Code,
		CreatedAt:   now().UTC(),
	}, nil
}
