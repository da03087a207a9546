package cmd

import (
	"errors"
	"fmt"

	"github.com/Dm-vYzion/StoryForge/config"
	dbadapter "github.com/Dm-vYzion/StoryForge/db"
	"github.com/Dm-vYzion/StoryForge/model"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo data: an author, a world, a starter campaign and sample characters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed()
	},
}

func runSeed() error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}

	email := "author@example.com"
	var user model.User
	err = db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hash, err := bcrypt.GenerateFromPassword([]byte("change-me-dev-only"), cfg.Security.BcryptCost)
		if err != nil {
			return err
		}
		user = model.User{
			Email:        email,
			PasswordHash: string(hash),
			DisplayName:  "Author User",
			Plan:         model.PlanCreator,
		}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	world := model.World{
		AuthorUserID: user.ID,
		Name:         "Eldertide Realms",
		Slug:         "eldertide-realms",
		Description:  "A classic fantasy world of fading magic.",
		BaseTruths: datatypes.JSON([]byte(`[
			{"id":"truth_magic_fading","statement":"Magic is fading from the world.","category":"Cosmic","visibility":"known"},
			{"id":"truth_old_war","statement":"An ancient war between gods shattered the leylines.","category":"Historical","visibility":"legend"}
		]`)),
		DefaultTags: datatypes.JSON([]byte(`["fantasy","low-magic"]`)),
		LicenseMode: model.LicenseOpen,
	}
	if err := db.Create(&world).Error; err != nil {
		return err
	}

	campaign := model.CampaignDefinition{
		AuthorUserID:     user.ID,
		WorldID:          &world.ID,
		Title:            "Shadows over Eldertide",
		ShortDescription: "Uncover why magic is disappearing from the realm.",
		LongDescription:  "A starter campaign about dwindling magic and looming war.",
		Tags:             datatypes.JSON([]byte(`["fantasy","starter"]`)),
		BaseTruths: datatypes.JSON([]byte(`[
			{"id":"truth_magic_fading","statement":"Magic is fading faster in the capital than anywhere else.","category":"Cosmic","visibility":"known"}
		]`)),
		RecommendedLevelMin: 1,
		RecommendedLevelMax: 3,
		Visibility:          model.VisibilityPublic,
		IsPaid:              false,
		Currency:            "USD",
		Quests: datatypes.JSON([]byte(`[
			{"id":"quest_intro","name":"The Fading Light","description":"Investigate strange magical failures in the capital.","objectives":["Talk to the Archmage","Inspect the leyline node"]}
		]`)),
	}
	if err := db.Create(&campaign).Error; err != nil {
		return err
	}

	pc := model.PlayerCharacter{
		OwnerUserID: user.ID,
		Name:        "Aria Seed",
		Race:        "Human",
		Class:       "Fighter",
		Level:       1,
		MaxHP:       12,
		BaseStats:   datatypes.JSON([]byte(`{"STR":15,"DEX":12,"CON":14,"INT":10,"WIS":11,"CHA":10}`)),
	}
	if err := db.Create(&pc).Error; err != nil {
		return err
	}

	fmt.Println("Seed complete")
	return nil
}
