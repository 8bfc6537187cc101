package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/aurelia/internal/config"
	"github.com/example/aurelia/internal/models"
	"github.com/example/aurelia/internal/utils"
)

// Identity reconciliation failure kinds. Handlers map these to HTTP statuses.
var (
	ErrVerificationFetch = errors.New("phone verification data unreachable")
	ErrIdentityConflict  = errors.New("phone is already registered to an unresolvable identity")
	ErrIdentityCreation  = errors.New("failed to create user identity")
	ErrTokenIssuance     = errors.New("failed to mint sign-in token")
	ErrTokenInvalid      = errors.New("sign-in token is invalid or expired")
)

// VerificationProfile mirrors the JSON document published by the
// phone-verification widget.
type VerificationProfile struct {
	CountryCode string `json:"user_country_code"`
	PhoneNumber string `json:"user_phone_number"`
	FirstName   string `json:"user_first_name"`
	LastName    string `json:"user_last_name"`
}

// ReconcileResult is the caller-visible outcome of a successful
// reconciliation.
type ReconcileResult struct {
	UserID       uuid.UUID
	Phone        string
	Email        string
	FirstName    string
	LastName     string
	IsNewUser    bool
	OneTimeToken string
	ActionLink   string
}

// IdentityService locates or provisions the canonical identity for a verified
// phone number and issues a one-time sign-in credential for it.
type IdentityService struct {
	db     *gorm.DB
	cfg    *config.Config
	client *http.Client
}

// NewIdentityService constructs an IdentityService.
func NewIdentityService(db *gorm.DB, cfg *config.Config) *IdentityService {
	return &IdentityService{
		db:  db,
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Reconcile fetches the widget's verification JSON, resolves the phone number
// to exactly one identity (creating it if needed), refreshes the profile row
// and mints a one-time sign-in token. Re-invoking with the same verification
// data resolves to the same identity and never duplicates it.
func (s *IdentityService) Reconcile(ctx context.Context, userJSONURL, redirectTo string) (*ReconcileResult, error) {
	profile, err := s.fetchVerification(ctx, userJSONURL)
	if err != nil {
		return nil, err
	}

	rawKey := utils.PhoneKey(profile.CountryCode, profile.PhoneNumber)
	// An empty key would turn the identity lookup into a match on every row
	// whose phone is unset (seeded staff accounts included). Refuse it before
	// any resolution happens.
	if rawKey == "" {
		return nil, fmt.Errorf("%w: verification data carries no phone number", ErrVerificationFetch)
	}
	fullPhone := utils.DisplayPhone(rawKey)
	syntheticEmail := fmt.Sprintf("phone_%s@%s", rawKey, s.cfg.AppDomain)
	fullName := strings.TrimSpace(profile.FirstName + " " + profile.LastName)

	user, err := s.findIdentity(syntheticEmail, fullPhone, rawKey)
	if err != nil {
		return nil, err
	}

	isNewUser := false
	loginEmail := syntheticEmail

	if user != nil {
		loginEmail, err = s.reuseIdentity(user, fullPhone, syntheticEmail)
		if err != nil {
			return nil, err
		}
	} else {
		user, loginEmail, isNewUser, err = s.createIdentity(syntheticEmail, fullPhone, rawKey, profile.FirstName, profile.LastName)
		if err != nil {
			return nil, err
		}
	}

	// The profile is a denormalized cache, not the identity of record; a
	// failed upsert is logged and swallowed.
	if err := s.upsertProfile(user.ID, fullName, fullPhone, loginEmail); err != nil {
		log.Printf("[Identity] profile upsert failed for user %s: %v", user.ID, err)
	}

	token, actionLink, err := s.mintLoginToken(user.ID, loginEmail, redirectTo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenIssuance, err)
	}

	return &ReconcileResult{
		UserID:       user.ID,
		Phone:        fullPhone,
		Email:        loginEmail,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		IsNewUser:    isNewUser,
		OneTimeToken: token,
		ActionLink:   actionLink,
	}, nil
}

// RedeemLoginToken exchanges an unexpired, unused one-time token for the user
// it was minted for and marks it used.
func (s *IdentityService) RedeemLoginToken(ctx context.Context, presented string) (uuid.UUID, error) {
	if strings.TrimSpace(presented) == "" {
		return uuid.Nil, ErrTokenInvalid
	}

	hash := utils.HashLoginToken(presented)

	var token models.LoginToken
	err := s.db.WithContext(ctx).
		Where("token_hash = ? AND used_at IS NULL AND expires_at > ?", hash, time.Now()).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrTokenInvalid
		}
		return uuid.Nil, err
	}

	// Guarded update keeps the token single-use under concurrent redemption.
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.LoginToken{}).
		Where("id = ? AND used_at IS NULL", token.ID).
		Update("used_at", now)
	if res.Error != nil {
		return uuid.Nil, res.Error
	}
	if res.RowsAffected == 0 {
		return uuid.Nil, ErrTokenInvalid
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", token.UserID).
		Update("last_sign_in_at", now).Error; err != nil {
		log.Printf("[Identity] failed to stamp last sign-in for user %s: %v", token.UserID, err)
	}

	return token.UserID, nil
}

func (s *IdentityService) fetchVerification(ctx context.Context, userJSONURL string) (*VerificationProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userJSONURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerificationFetch, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerificationFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrVerificationFetch, resp.StatusCode)
	}

	var profile VerificationProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerificationFetch, err)
	}

	profile.CountryCode = strings.TrimSpace(profile.CountryCode)
	profile.PhoneNumber = strings.TrimSpace(profile.PhoneNumber)
	profile.FirstName = strings.TrimSpace(profile.FirstName)
	profile.LastName = strings.TrimSpace(profile.LastName)

	return &profile, nil
}

// findIdentity resolves an identity by synthetic email (case-insensitive) or
// by phone, tolerating a stored value with or without the leading `+`.
// Returns nil without error when no identity matches.
func (s *IdentityService) findIdentity(email, fullPhone, rawPhone string) (*models.User, error) {
	var user models.User
	err := s.db.
		Where("LOWER(email) = LOWER(?) OR phone IN ?", email, []string{fullPhone, rawPhone}).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// reuseIdentity backfills phone/email on an existing identity and returns the
// email a sign-in token must be minted for. That email MUST be the one already
// bound to the identity when present, or the token would establish a session
// for the wrong account.
func (s *IdentityService) reuseIdentity(user *models.User, fullPhone, syntheticEmail string) (string, error) {
	updates := map[string]interface{}{}

	if user.Phone != fullPhone || !user.PhoneConfirmed {
		updates["phone"] = fullPhone
		updates["phone_confirmed"] = true
	}

	loginEmail := user.Email
	if loginEmail == "" {
		updates["email"] = syntheticEmail
		updates["email_confirmed"] = true
		loginEmail = syntheticEmail
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return "", err
		}
	}

	return loginEmail, nil
}

// createIdentity provisions a new identity. A duplicate-key failure means the
// resolution raced another request for the same phone; resolution is re-run
// once and the surviving identity reused.
func (s *IdentityService) createIdentity(syntheticEmail, fullPhone, rawPhone, firstName, lastName string) (*models.User, string, bool, error) {
	user := models.User{
		Email:          syntheticEmail,
		EmailConfirmed: true,
		Phone:          fullPhone,
		PhoneConfirmed: true,
		FirstName:      firstName,
		LastName:       lastName,
	}

	err := s.db.Create(&user).Error
	if err == nil {
		return &user, syntheticEmail, true, nil
	}

	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, "", false, fmt.Errorf("%w: %v", ErrIdentityCreation, err)
	}

	existing, findErr := s.findIdentity(syntheticEmail, fullPhone, rawPhone)
	if findErr != nil {
		return nil, "", false, findErr
	}
	if existing == nil {
		return nil, "", false, ErrIdentityConflict
	}

	loginEmail, reuseErr := s.reuseIdentity(existing, fullPhone, syntheticEmail)
	if reuseErr != nil {
		return nil, "", false, reuseErr
	}

	return existing, loginEmail, false, nil
}

func (s *IdentityService) upsertProfile(userID uuid.UUID, fullName, phone, email string) error {
	profile := models.Profile{
		UserID:   userID,
		FullName: fullName,
		Phone:    phone,
		Email:    email,
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "phone", "email", "updated_at"}),
	}).Create(&profile).Error
}

func (s *IdentityService) mintLoginToken(userID uuid.UUID, email, redirectTo string) (string, string, error) {
	token, hash, err := utils.GenerateLoginToken()
	if err != nil {
		return "", "", err
	}

	record := models.LoginToken{
		UserID:     userID,
		Email:      email,
		TokenHash:  hash,
		RedirectTo: redirectTo,
		ExpiresAt:  time.Now().Add(s.cfg.LoginTokenTTL),
	}

	if err := s.db.Create(&record).Error; err != nil {
		return "", "", err
	}

	actionLink := fmt.Sprintf("%s/api/auth/phone/session?token=%s",
		strings.TrimRight(s.cfg.PublicBaseURL, "/"), token)
	if redirectTo != "" {
		actionLink += "&redirect_to=" + url.QueryEscape(redirectTo)
	}

	return token, actionLink, nil
}
