package mastodon

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/CrestNiraj12/mastosql/domain"
)

// mastodonStatus is the subset of Mastodon's Status entity we care about.
// Required string fields are pointers so that a missing key can be told
// apart from an empty value.
type mastodonStatus struct {
	ID         *string          `json:"id"`
	CreatedAt  *string          `json:"created_at"`
	Sensitive  bool             `json:"sensitive"`
	Visibility *string          `json:"visibility"`
	Account    *mastodonAccount `json:"account"`
	Reblog     *mastodonReblog  `json:"reblog"`
	Content    *string          `json:"content"` // HTML
}

func (st mastodonStatus) validate() error {
	switch {
	case st.ID == nil:
		return errors.New("status has no id")
	case st.CreatedAt == nil:
		return fmt.Errorf("status %s has no created_at", *st.ID)
	case st.Visibility == nil:
		return fmt.Errorf("status %s has no visibility", *st.ID)
	case st.Content == nil:
		return fmt.Errorf("status %s has no content", *st.ID)
	case st.Account == nil:
		return fmt.Errorf("status %s has no account", *st.ID)
	}
	if err := st.Account.validate(); err != nil {
		return fmt.Errorf("status %s: %w", *st.ID, err)
	}
	if st.Reblog != nil && st.Reblog.Content == nil {
		return fmt.Errorf("status %s: reblog has no content", *st.ID)
	}
	return nil
}

// mastodonStatuses is a timeline page. A null body is not an empty page.
type mastodonStatuses []mastodonStatus

func (ss mastodonStatuses) validate() error {
	if ss == nil {
		return errors.New("expected a status array, got null")
	}
	for i, st := range ss {
		if err := st.validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

type mastodonAccount struct {
	ID   *string `json:"id"`
	Acct *string `json:"acct"`
	Bot  bool    `json:"bot"`
}

func (a *mastodonAccount) validate() error {
	switch {
	case a == nil:
		return errors.New("account is null")
	case a.ID == nil:
		return errors.New("account has no id")
	case a.Acct == nil:
		return fmt.Errorf("account %s has no acct", *a.ID)
	}
	return nil
}

func (a mastodonAccount) toDomain() domain.Account {
	return domain.Account{ID: deref(a.ID), Acct: deref(a.Acct), Bot: a.Bot}
}

// mastodonReblog is the nested status of a boost. Only the content is kept.
type mastodonReblog struct {
	Content *string `json:"content"`
}

// mastodonCreated is the publish response; everything but the id is dropped.
type mastodonCreated struct {
	ID string `json:"id"`
}

// mastodonNewStatus is the JSON body of POST /api/v1/statuses.
type mastodonNewStatus struct {
	Status      string `json:"status"`
	Sensitive   bool   `json:"sensitive"`
	SpoilerText string `json:"spoiler_text"`
	Visibility  string `json:"visibility"`
}

func mapStatuses(in mastodonStatuses) []domain.Status {
	out := make([]domain.Status, 0, len(in))
	for _, st := range in {
		out = append(out, mapStatus(st))
	}
	return out
}

// mapStatus expects st to have passed validate.
func mapStatus(st mastodonStatus) domain.Status {
	s := domain.Status{
		ID:         deref(st.ID),
		CreatedAt:  deref(st.CreatedAt),
		Sensitive:  st.Sensitive,
		Visibility: deref(st.Visibility),
		Content:    deref(st.Content),
	}
	if st.Account != nil {
		s.Account = st.Account.toDomain()
	}
	if st.Reblog != nil {
		s.Reblog = &domain.Reblog{Content: deref(st.Reblog.Content)}
	}
	return s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func toWireStatus(ns domain.NewStatus) mastodonNewStatus {
	return mastodonNewStatus{
		Status:      ns.Text,
		Sensitive:   ns.Sensitive,
		SpoilerText: ns.SpoilerText,
		Visibility:  ns.Visibility,
	}
}

// mapAccessToken reads the fields Mastodon adds to the standard token
// response: scope and created_at. token_type and scope must be present.
func mapAccessToken(tok *oauth2.Token) (domain.AccessToken, error) {
	if tok == nil || tok.AccessToken == "" {
		return domain.AccessToken{}, fmt.Errorf("%w: token response missing access_token", domain.ErrDecode)
	}
	if tok.TokenType == "" {
		return domain.AccessToken{}, fmt.Errorf("%w: token response missing token_type", domain.ErrDecode)
	}
	scope, ok := tok.Extra("scope").(string)
	if !ok {
		return domain.AccessToken{}, fmt.Errorf("%w: token response missing scope", domain.ErrDecode)
	}

	createdAt, err := epochSeconds(tok.Extra("created_at"))
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("%w: created_at: %w", domain.ErrDecode, err)
	}

	return domain.AccessToken{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		Scope:       scope,
		CreatedAt:   createdAt,
	}, nil
}

func epochSeconds(v any) (int64, error) {
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("not an integer: %v", x)
		}
		return int64(x), nil
	case json.Number:
		return x.Int64()
	case string:
		return strconv.ParseInt(x, 10, 64)
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case nil:
		return 0, fmt.Errorf("missing")
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
