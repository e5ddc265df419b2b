package domain

// UserState is the in-progress flow of one admin. A user holds at most one.
type UserState struct {
	UserID  int64  `json:"user_id" bson:"user_id" firestore:"user_id"`
	Step    Step   `json:"step" bson:"step" firestore:"step"`
	Keyword string `json:"keyword,omitempty" bson:"keyword,omitempty" firestore:"keyword,omitempty"`
	Target  string `json:"target,omitempty" bson:"target,omitempty" firestore:"target,omitempty"`
	Page    int    `json:"page,omitempty" bson:"page,omitempty" firestore:"page,omitempty"`
}

func (s *UserState) Clone() *UserState {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
