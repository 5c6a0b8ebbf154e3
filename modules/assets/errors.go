package assets

import "errors"

var (
	ErrAssetNotFound  = errors.New("asset not found")
	ErrNameRequired   = errors.New("asset name is required")
	ErrTagRequired    = errors.New("asset tag is required")
	ErrTagTaken       = errors.New("asset tag is already in use")
	ErrInvalidStatus  = errors.New("invalid asset status")
	ErrUnknownUser    = errors.New("assignee is not a member of this tenant")
	ErrQuotaExhausted = errors.New("asset quota exhausted for this plan")
)
