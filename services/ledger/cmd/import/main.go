package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"eksporyuk-ledger/pkg/config"
	"eksporyuk-ledger/pkg/database"
	"eksporyuk-ledger/pkg/logger"
	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/model"
	"eksporyuk-ledger/services/ledger/internal/repo/persistent"
	"eksporyuk-ledger/services/ledger/internal/usecase"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// legacyExport is the JSON shape of the historical platform dump. Users and
// sales come from the old order system; the rules block names the commission
// configuration to load alongside them.
type legacyExport struct {
	Users []legacyUser `json:"users"`
	Rules []legacyRule `json:"rules"`
	Sales []legacySale `json:"sales"`
}

type legacyUser struct {
	ExternalID    string `json:"external_id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	AffiliateCode string `json:"affiliate_code,omitempty"`
}

type legacyRule struct {
	ProductID  string `json:"product_id"`
	Type       string `json:"type"`
	FlatAmount int64  `json:"flat_amount,omitempty"`
	RateBps    int64  `json:"rate_bps,omitempty"`
	Tiers      []struct {
		Floor      int64 `json:"floor"`
		FlatAmount int64 `json:"flat_amount,omitempty"`
		RateBps    int64 `json:"rate_bps,omitempty"`
	} `json:"tiers,omitempty"`
}

type legacySale struct {
	OrderID      string    `json:"order_id"`
	Amount       int64     `json:"amount"`
	ProductID    string    `json:"product_id"`
	BuyerID      string    `json:"buyer_id"`
	AffiliateRef string    `json:"affiliate_ref"`
	SettledAt    time.Time `json:"settled_at"`
}

func main() {
	var (
		filePath = flag.String("file", "", "path to the legacy export JSON")
		ruleSet  = flag.String("ruleset", "default", "name of the commission ruleset to load")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: import -file <export.json> [-ruleset <name>]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Error("Failed to read export file: %v", err)
		panic(err)
	}

	var export legacyExport
	if err := json.Unmarshal(data, &export); err != nil {
		log.Error("Failed to parse export file: %v", err)
		panic(err)
	}

	importedAt := time.Now().UTC()

	if err := importUsers(db, export.Users, importedAt, log); err != nil {
		log.Error("Failed to import users: %v", err)
		panic(err)
	}

	ruleRepo := persistent.NewRuleRepository(db)
	if err := importRules(ruleRepo, export.Rules, *ruleSet, log); err != nil {
		log.Error("Failed to import rules: %v", err)
		panic(err)
	}

	if err := importSales(db, cfg, export.Sales, log); err != nil {
		log.Error("Failed to import sales: %v", err)
		panic(err)
	}

	log.Info("Import complete: %d users, %d rules, %d sales", len(export.Users), len(export.Rules), len(export.Sales))
}

// importUsers provisions a current user, a frozen legacy identity row and,
// when the dump carries an affiliate code, an affiliate account. Legacy
// identity rows are written once and never updated so attribution stays
// deterministic across re-runs.
func importUsers(db *gorm.DB, users []legacyUser, importedAt time.Time, log *logger.Logger) error {
	for _, legacy := range users {
		email := strings.ToLower(strings.TrimSpace(legacy.Email))
		if email == "" {
			log.Info("Skipping legacy user %s: no email", legacy.ExternalID)
			continue
		}

		var identity model.LegacyIdentityModel
		result := db.Where("external_id = ?", legacy.ExternalID).First(&identity)
		if result.Error == nil {
			log.Info("Legacy identity %s already imported, skipping", legacy.ExternalID)
			continue
		}

		var user model.UserModel
		result = db.Where("lower(email) = ?", email).First(&user)
		if result.Error != nil {
			// Imported accounts get a random placeholder hash; the owner
			// resets their password on first login.
			placeholder, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to generate placeholder password: %w", err)
			}
			user = model.UserModel{
				Email:        email,
				Name:         legacy.Name,
				PasswordHash: string(placeholder),
			}
			if err := db.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create user %s: %w", email, err)
			}
			log.Info("Created user %s for legacy id %s", email, legacy.ExternalID)
		}

		identity = model.LegacyIdentityModel{
			ExternalID: legacy.ExternalID,
			Email:      email,
			Name:       legacy.Name,
			ImportedAt: importedAt,
		}
		if err := db.Create(&identity).Error; err != nil {
			return fmt.Errorf("failed to create legacy identity %s: %w", legacy.ExternalID, err)
		}

		if legacy.AffiliateCode != "" {
			var account model.AffiliateAccountModel
			result = db.Where("user_id = ?", user.ID).First(&account)
			if result.Error != nil {
				account = model.AffiliateAccountModel{
					UserID: user.ID,
					Code:   legacy.AffiliateCode,
					Status: string(entity.AffiliateStatusApproved),
				}
				if err := db.Create(&account).Error; err != nil {
					return fmt.Errorf("failed to create affiliate account for %s: %w", email, err)
				}
				log.Info("Created affiliate %s (code %s)", email, legacy.AffiliateCode)
			}
		}
	}
	return nil
}

func importRules(ruleRepo persistent.RuleRepository, rules []legacyRule, ruleSet string, log *logger.Logger) error {
	for _, legacy := range rules {
		rule := &entity.CommissionRule{
			ProductID:  legacy.ProductID,
			Type:       entity.RuleType(legacy.Type),
			FlatAmount: legacy.FlatAmount,
			RateBps:    legacy.RateBps,
			RuleSet:    ruleSet,
			Active:     true,
		}
		for _, tier := range legacy.Tiers {
			rule.Tiers = append(rule.Tiers, entity.RuleTier{
				Floor:      tier.Floor,
				FlatAmount: tier.FlatAmount,
				RateBps:    tier.RateBps,
			})
		}
		if _, err := ruleRepo.Upsert(rule); err != nil {
			return fmt.Errorf("failed to upsert rule for product %s: %w", legacy.ProductID, err)
		}
		log.Info("Loaded %s rule for product %s (ruleset %s)", legacy.Type, legacy.ProductID, ruleSet)
	}
	return nil
}

// importSales replays every historical order through the regular posting
// path. The poster is idempotent on sale id, so a crashed import can simply
// be restarted. No events are published for backfilled commissions.
func importSales(db *gorm.DB, cfg *config.Config, sales []legacySale, log *logger.Logger) error {
	saleRepo := persistent.NewSaleRepository(db)
	affiliateRepo := persistent.NewAffiliateRepository(db)
	ledgerRepo := persistent.NewLedgerRepository(db, cfg.PostingMaxRetries)
	rules := usecase.NewRuleResolver(persistent.NewRuleRepository(db))
	attribution := usecase.NewAttributionResolver(affiliateRepo)

	poster := usecase.NewPostingUseCase(saleRepo, affiliateRepo, ledgerRepo, rules, attribution, nil, nil, log)

	var posted, skipped, queued int
	for _, sale := range sales {
		result, err := poster.RecordSale(usecase.RecordSaleInput{
			SaleID:       sale.OrderID,
			Amount:       sale.Amount,
			ProductID:    sale.ProductID,
			BuyerID:      sale.BuyerID,
			AffiliateRef: sale.AffiliateRef,
			SettledAt:    sale.SettledAt,
			Source:       entity.SaleSourceImport,
		})
		if err != nil {
			return fmt.Errorf("failed to record sale %s: %w", sale.OrderID, err)
		}
		switch {
		case result.Posted:
			posted++
		case result.Unattributable != nil:
			queued++
		default:
			skipped++
		}
	}

	log.Info("Sales imported: %d posted, %d already present or no affiliate, %d queued for review", posted, skipped, queued)
	return nil
}
