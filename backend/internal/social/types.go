package social

import "time"

// ============================================================================
// Domain Types
// ============================================================================

// User represents a member of the friendship graph. PopularityScore is
// derived state: it is written by the score engine only and always reflects
// the formula over the friend set and hobby overlap as of the last trigger.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Age             int       `json:"age"`
	Hobbies         []string  `json:"hobbies"`
	Friends         []string  `json:"friends"`
	CreatedAt       time.Time `json:"created_at"`
	PopularityScore float64   `json:"popularity_score"`
}

// Clone returns a deep copy so stored records never alias caller slices.
func (u *User) Clone() *User {
	cp := *u
	cp.Hobbies = append([]string(nil), u.Hobbies...)
	cp.Friends = append([]string(nil), u.Friends...)
	return &cp
}

// HasFriend reports whether friendID is in the friend set.
func (u *User) HasFriend(friendID string) bool {
	for _, id := range u.Friends {
		if id == friendID {
			return true
		}
	}
	return false
}

// UserInput carries the caller-supplied fields for user creation.
type UserInput struct {
	Username string   `json:"username"`
	Age      int      `json:"age"`
	Hobbies  []string `json:"hobbies"`
}

// UserUpdate is a sparse update: nil fields are left unchanged. Hobbies
// replace the whole set when present.
type UserUpdate struct {
	Username *string   `json:"username,omitempty"`
	Age      *int      `json:"age,omitempty"`
	Hobbies  *[]string `json:"hobbies,omitempty"`
}

// ============================================================================
// Projection Types
// ============================================================================

// Node categories assigned by the projector.
const (
	CategoryHigh = "high"
	CategoryLow  = "low"
)

// Node is a renderable user: a position on the layout circle plus a
// popularity category for the frontend to style.
type Node struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Score    float64 `json:"popularity_score"`
	Category string  `json:"category"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Edge is one undirected friendship. Each symmetric pair appears exactly
// once, with Source/Target in id order.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// GraphView is the projector output consumed by renderers.
type GraphView struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// ============================================================================
// Aggregate Types
// ============================================================================

// Stats is the read-only aggregate view over the whole graph.
type Stats struct {
	TotalUsers       int     `json:"total_users"`
	TotalFriendships int     `json:"total_friendships"`
	AverageScore     float64 `json:"average_score"`
	TopUsers         []*User `json:"top_users"`
}
