package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Samuel009-alt/heart-rate-app/internal/models"
)

// PostgresUserRepository 用户资料 Postgres 实现
type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

var _ UserRepository = (*PostgresUserRepository)(nil)

const selectUserColumns = `SELECT user_id, full_name, email, age, gender, phone_number, address, profile_image_url
	FROM user_profiles`

// GetUser 按 uid 读取资料，不存在返回 ErrNotFound
func (r *PostgresUserRepository) GetUser(ctx context.Context, uid string) (*models.UserData, error) {
	row := r.db.QueryRowContext(ctx, selectUserColumns+` WHERE user_id = $1`, uid)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// SaveUser 整行写入（存在则覆盖）
func (r *PostgresUserRepository) SaveUser(ctx context.Context, user models.UserData) error {
	if user.UID == "" {
		return fmt.Errorf("uid is required")
	}
	fullName := user.FullName
	if fullName == "" {
		fullName = "User"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id, full_name, email, age, gender, phone_number, address, profile_image_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id)
		 DO UPDATE SET full_name = EXCLUDED.full_name,
		               email = EXCLUDED.email,
		               age = EXCLUDED.age,
		               gender = EXCLUDED.gender,
		               phone_number = EXCLUDED.phone_number,
		               address = EXCLUDED.address,
		               profile_image_url = EXCLUDED.profile_image_url,
		               updated_at = now()`,
		user.UID, fullName, user.Email,
		nullInt(user.Age), nullString(user.Gender), nullString(user.PhoneNumber),
		nullString(user.Address), nullString(user.ProfileImageURL),
	)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// UpdateProfile 只更新 patch 中非 nil 的字段
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, uid string, patch models.ProfilePatch) (*models.UserData, error) {
	if patch.Empty() {
		return r.GetUser(ctx, uid)
	}

	var sets []string
	var args []interface{}
	argN := 1
	add := func(column string, v interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argN))
		args = append(args, v)
		argN++
	}

	if patch.FullName != nil {
		add("full_name", *patch.FullName)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Age != nil {
		add("age", *patch.Age)
	}
	if patch.Gender != nil {
		add("gender", *patch.Gender)
	}
	if patch.PhoneNumber != nil {
		add("phone_number", *patch.PhoneNumber)
	}
	if patch.Address != nil {
		add("address", *patch.Address)
	}
	if patch.ProfileImageURL != nil {
		add("profile_image_url", *patch.ProfileImageURL)
	}

	query := fmt.Sprintf(`UPDATE user_profiles SET %s, updated_at = now() WHERE user_id = $%d`,
		strings.Join(sets, ", "), argN)
	args = append(args, uid)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return r.GetUser(ctx, uid)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.UserData, error) {
	var u models.UserData
	var fullName, email, gender, phone, address, profileImageURL sql.NullString
	var age sql.NullInt64
	if err := row.Scan(&u.UID, &fullName, &email, &age, &gender, &phone, &address, &profileImageURL); err != nil {
		return nil, err
	}
	u.FullName = fullName.String
	if u.FullName == "" {
		u.FullName = "User"
	}
	u.Email = email.String
	if age.Valid {
		v := int(age.Int64)
		u.Age = &v
	}
	u.Gender = stringPtr(gender)
	u.PhoneNumber = stringPtr(phone)
	u.Address = stringPtr(address)
	u.ProfileImageURL = stringPtr(profileImageURL)
	return &u, nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
