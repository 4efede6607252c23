package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type taxConfigurationRepository struct {
	db *database.DB
}

func NewTaxConfigurationRepository(db *database.DB) tax.ConfigurationRepository {
	return &taxConfigurationRepository{db: db}
}

// taxConfigurationRow holds the JSONB columns before decoding.
type taxConfigurationRow struct {
	incomeSlabs       []byte
	localSlabs        []byte
	professionalSlabs []byte
	socialSecurity    []byte
	healthInsurance   []byte
	housingExemption  []byte
	travelExemption   []byte
}

func (row taxConfigurationRow) decode(cfg *tax.Configuration) error {
	if err := json.Unmarshal(row.incomeSlabs, &cfg.IncomeTaxSlabs); err != nil {
		return fmt.Errorf("decode income_tax_slabs: %w", err)
	}
	if err := json.Unmarshal(row.localSlabs, &cfg.LocalTaxSlabs); err != nil {
		return fmt.Errorf("decode local_tax_slabs: %w", err)
	}
	if err := json.Unmarshal(row.professionalSlabs, &cfg.ProfessionalTaxSlabs); err != nil {
		return fmt.Errorf("decode professional_tax_slabs: %w", err)
	}
	if err := json.Unmarshal(row.socialSecurity, &cfg.SocialSecurity); err != nil {
		return fmt.Errorf("decode social_security: %w", err)
	}
	if err := json.Unmarshal(row.healthInsurance, &cfg.HealthInsurance); err != nil {
		return fmt.Errorf("decode health_insurance: %w", err)
	}
	if len(row.housingExemption) > 0 {
		if err := json.Unmarshal(row.housingExemption, &cfg.HousingExemption); err != nil {
			return fmt.Errorf("decode housing_exemption: %w", err)
		}
	}
	if len(row.travelExemption) > 0 {
		if err := json.Unmarshal(row.travelExemption, &cfg.TravelExemption); err != nil {
			return fmt.Errorf("decode travel_exemption: %w", err)
		}
	}
	return nil
}

func (r *taxConfigurationRepository) GetActive(ctx context.Context, companyID, country, financialYear string) (tax.Configuration, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, country, financial_year, income_tax_slabs, local_tax_slabs,
			   professional_tax_enabled, professional_tax_slabs, social_security, health_insurance,
			   housing_exemption, travel_exemption, is_active, created_at, updated_at
		FROM tax_configurations
		WHERE company_id = $1 AND country = $2 AND financial_year = $3 AND is_active = true
	`

	var cfg tax.Configuration
	var row taxConfigurationRow
	err := q.QueryRow(ctx, query, companyID, country, financialYear).Scan(
		&cfg.ID, &cfg.CompanyID, &cfg.Country, &cfg.FinancialYear, &row.incomeSlabs, &row.localSlabs,
		&cfg.ProfessionalTaxEnabled, &row.professionalSlabs, &row.socialSecurity, &row.healthInsurance,
		&row.housingExemption, &row.travelExemption, &cfg.IsActive, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return tax.Configuration{}, tax.ErrConfigurationNotFound
		}
		return tax.Configuration{}, fmt.Errorf("failed to get tax configuration: %w", err)
	}
	if err := row.decode(&cfg); err != nil {
		return tax.Configuration{}, fmt.Errorf("failed to get tax configuration: %w", err)
	}

	return cfg, nil
}

func (r *taxConfigurationRepository) Create(ctx context.Context, cfg tax.Configuration) (tax.Configuration, error) {
	q := GetQuerier(ctx, r.db)

	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}

	incomeSlabs, err := json.Marshal(nonNilSlice(cfg.IncomeTaxSlabs))
	if err != nil {
		return tax.Configuration{}, fmt.Errorf("failed to encode income tax slabs: %w", err)
	}
	localSlabs, err := json.Marshal(nonNilSlice(cfg.LocalTaxSlabs))
	if err != nil {
		return tax.Configuration{}, fmt.Errorf("failed to encode local tax slabs: %w", err)
	}
	professionalSlabs, err := json.Marshal(nonNilSlice(cfg.ProfessionalTaxSlabs))
	if err != nil {
		return tax.Configuration{}, fmt.Errorf("failed to encode professional tax slabs: %w", err)
	}
	socialSecurity, err := json.Marshal(cfg.SocialSecurity)
	if err != nil {
		return tax.Configuration{}, fmt.Errorf("failed to encode social security rates: %w", err)
	}
	healthInsurance, err := json.Marshal(cfg.HealthInsurance)
	if err != nil {
		return tax.Configuration{}, fmt.Errorf("failed to encode health insurance rates: %w", err)
	}

	var housingExemption, travelExemption []byte
	if cfg.HousingExemption != nil {
		if housingExemption, err = json.Marshal(cfg.HousingExemption); err != nil {
			return tax.Configuration{}, fmt.Errorf("failed to encode housing exemption: %w", err)
		}
	}
	if cfg.TravelExemption != nil {
		if travelExemption, err = json.Marshal(cfg.TravelExemption); err != nil {
			return tax.Configuration{}, fmt.Errorf("failed to encode travel exemption: %w", err)
		}
	}

	query := `
		INSERT INTO tax_configurations (
			id, company_id, country, financial_year, income_tax_slabs, local_tax_slabs,
			professional_tax_enabled, professional_tax_slabs, social_security, health_insurance,
			housing_exemption, travel_exemption, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		cfg.ID, cfg.CompanyID, cfg.Country, cfg.FinancialYear, incomeSlabs, localSlabs,
		cfg.ProfessionalTaxEnabled, professionalSlabs, socialSecurity, healthInsurance,
		housingExemption, travelExemption, cfg.IsActive,
	).Scan(&cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "uk_tax_configuration_year") {
			return tax.Configuration{}, tax.ErrConfigurationExists
		}
		return tax.Configuration{}, fmt.Errorf("failed to create tax configuration: %w", err)
	}

	return cfg, nil
}

// nonNilSlice keeps empty lists encoded as [] rather than null.
func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
