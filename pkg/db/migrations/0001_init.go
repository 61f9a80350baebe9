package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

// Schema snapshots frozen at migration time. The live models in internal/models
// may evolve; these must not.

type User struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string         `gorm:"type:text;not null"`
	Email           string         `gorm:"type:text;uniqueIndex;not null"`
	PasswordHash    string         `gorm:"type:text;not null"`
	Role            string         `gorm:"type:text;not null;default:'user'"`
	Avatar          *string        `gorm:"type:text"`
	EmailVerifiedAt *time.Time     `gorm:"type:timestamptz"`
	CreatedAt       time.Time      `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

type Author struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID         `gorm:"type:uuid;uniqueIndex;not null"`
	Bio         string            `gorm:"type:text"`
	Website     string            `gorm:"type:text"`
	SocialLinks datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt   time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
	User        User              `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Staff struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Position  string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
	User      User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"type:text;uniqueIndex;not null"`
	Slug        string    `gorm:"type:text;uniqueIndex;not null"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"type:text;uniqueIndex;not null"`
	Slug      string    `gorm:"type:text;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

type Article struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string         `gorm:"type:varchar(255);not null"`
	Slug          string         `gorm:"type:text;uniqueIndex;not null"`
	Excerpt       string         `gorm:"type:text"`
	Content       string         `gorm:"type:text;not null"`
	FeaturedImage *string        `gorm:"type:text"`
	Status        string         `gorm:"type:text;not null;default:'draft';index"`
	PublishedAt   *time.Time     `gorm:"type:timestamptz;index"`
	AuthorID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	CreatedAt     time.Time      `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
	Author        Author         `gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Categories    []Category     `gorm:"many2many:article_categories"`
	Tags          []Tag          `gorm:"many2many:article_tags"`
}

type Interaction struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_interactions_user_article_type"`
	ArticleID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_interactions_user_article_type"`
	Type      string    `gorm:"type:text;not null;uniqueIndex:ux_interactions_user_article_type"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	User      User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Article   Article   `gorm:"foreignKey:ArticleID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type AuditLog struct {
	ID         int64          `gorm:"type:bigserial;primaryKey"`
	ActorID    *uuid.UUID     `gorm:"type:uuid;index"`
	Action     string         `gorm:"type:text;not null"`
	TargetType string         `gorm:"type:text;not null;index"`
	TargetID   *string        `gorm:"type:text"`
	OldValues  datatypes.JSON `gorm:"type:jsonb"`
	NewValues  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Actor      *User          `gorm:"foreignKey:ActorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

type Draft struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string         `gorm:"type:varchar(255);not null"`
	Content   string         `gorm:"type:text;not null"`
	AuthorID  uuid.UUID      `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	Author    Author         `gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Subscriber struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string     `gorm:"type:text;uniqueIndex;not null"`
	Name         string     `gorm:"type:text"`
	IsActive     bool       `gorm:"not null;default:true"`
	SubscribedAt *time.Time `gorm:"type:timestamptz"`
	CreatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type ResetToken struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Token      string    `gorm:"type:text;uniqueIndex;not null"`
	ExpiresAt  time.Time `gorm:"type:timestamptz;not null"`
	CreatedAt  time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	ConsumedAt *time.Time
	User       User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).AutoMigrate(
		&User{},
		&Author{},
		&Staff{},
		&Category{},
		&Tag{},
		&Article{},
		&Interaction{},
		&AuditLog{},
		&Draft{},
		&Subscriber{},
		&ResetToken{},
	); err != nil {
		return err
	}

	m := gormDB.WithContext(ctx).Migrator()
	if err := m.CreateConstraint(&Article{}, "Author"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&Interaction{}, "Article"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&Interaction{}, "User"); err != nil {
		return err
	}

	return nil
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).Migrator().DropTable(
		&ResetToken{},
		&Subscriber{},
		&Draft{},
		&AuditLog{},
		&Interaction{},
		"article_tags",
		"article_categories",
		&Article{},
		&Tag{},
		&Category{},
		&Staff{},
		&Author{},
		&User{},
	); err != nil {
		return err
	}

	return nil
}
