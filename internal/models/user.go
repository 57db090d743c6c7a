package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the authentication identity and public profile. Email is the
// login field; both email and username are globally unique.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName    string    `gorm:"size:150;not null" json:"first_name"`
	LastName     string    `gorm:"size:150;not null" json:"last_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	AvatarURL    string    `gorm:"size:512" json:"avatar"`
	IsStaff      bool      `gorm:"not null;default:false" json:"-"`
	IsSuperuser  bool      `gorm:"not null;default:false" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// CanModify reports whether the user may mutate a resource owned by authorID.
func (u *User) CanModify(authorID uuid.UUID) bool {
	return u.IsStaff || u.IsSuperuser || u.ID == authorID
}

// Subscription is a follower edge between two users. A user cannot
// subscribe to themselves; that is enforced in the service layer.
type Subscription struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	SubscriberID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscriptions_edge" json:"subscriber_id"`
	TargetID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscriptions_edge" json:"target_id"`
	Subscriber   User      `gorm:"foreignKey:SubscriberID;constraint:OnDelete:CASCADE" json:"-"`
	Target       User      `gorm:"foreignKey:TargetID;constraint:OnDelete:CASCADE" json:"-"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
