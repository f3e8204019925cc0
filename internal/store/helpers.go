package store

import (
	"database/sql"
	"strings"

	"github.com/VidaNova/AcolheBot/internal/models"
)

// DetectDSNType classifies a DSN as "postgres" or "sqlite3" so callers can
// pick the matching driver. PostgreSQL DSNs use either the URL form or the
// key=value form; anything else is treated as a SQLite file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite3"
}

// visitorColumns maps wizard field names to their table columns. Acting as a
// whitelist keeps field names out of SQL text.
var visitorColumns = map[models.VisitorField]string{
	models.FieldNome:           "name",
	models.FieldEmail:          "email",
	models.FieldDataNascimento: "birthdate",
	models.FieldCidade:         "city",
	models.FieldGenero:         "gender",
	models.FieldEstadoCivil:    "marital_status",
}

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// scanVisitorRow scans a Visitor from a single sql.Row.
func scanVisitorRow(row *sql.Row) (*models.Visitor, error) {
	var v models.Visitor
	var email, birthdate, city, gender, marital, referral, prayer, contact sql.NullString
	err := row.Scan(
		&v.Phone, &v.Name, &email, &birthdate, &city, &gender, &marital,
		&v.HasChurch, &referral, &v.Member, &prayer, &contact,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.Email = email.String
	v.Birthdate = birthdate.String
	v.City = city.String
	v.Gender = gender.String
	v.MaritalStatus = marital.String
	v.ReferralSource = referral.String
	v.PrayerRequest = prayer.String
	v.ContactTime = contact.String
	return &v, nil
}

const visitorSelectColumns = `phone, name, email, birthdate, city, gender, marital_status,
	has_church, referral_source, member, prayer_request, contact_time, created_at, updated_at`
