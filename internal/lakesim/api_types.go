package lakesim

// Error codes shared across the API surface. The client SDK keys off
// the `error` field, so these strings are part of the contract.
const (
	CodeInvalidRequest  = "E_INVALID_REQUEST"
	CodeInvalidToken    = "E_INVALID_TOKEN"
	CodeBadCredentials  = "E_BAD_CREDENTIALS"
	CodeAccessDenied    = "E_ACCESS_DENIED"
	CodeAccountNotFound = "E_ACCOUNT_NOT_FOUND"
	CodePathNotFound    = "E_PATH_NOT_FOUND"
	CodeNotADirectory   = "E_NOT_A_DIRECTORY"
	CodeRateLimited     = "E_RATE_LIMITED"
	CodeInternalError   = "E_INTERNAL_ERROR"
)

type APIError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

type TokenRequest struct {
	Account string `json:"account" binding:"required"`
	Key     string `json:"key" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

type AccountViewResponse struct {
	Name         string `json:"name"`
	StoreAccount string `json:"storeAccount"`
	Location     string `json:"location,omitempty"`
}

type StatusResponse struct {
	Account string `json:"account"`
	Path    string `json:"path"`
	Exists  bool   `json:"exists"`
	Type    string `json:"type,omitempty"`
}

type ListEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type ListResponse struct {
	Account string      `json:"account"`
	Path    string      `json:"path"`
	Entries []ListEntry `json:"entries"`
}

type AceView struct {
	Scope     string `json:"scope"`
	Type      string `json:"type"`
	Qualifier string `json:"qualifier"`
	Perms     string `json:"perms"`
}

type AclResponse struct {
	Account string    `json:"account"`
	Path    string    `json:"path"`
	Aces    []AceView `json:"aces"`
}

type RemoveAclRequest struct {
	Account string `json:"account" binding:"required"`
	Path    string `json:"path" binding:"required"`
	Aces    string `json:"aces" binding:"required"`
}

type RemoveAclResponse struct {
	Path    string `json:"path"`
	Removed int    `json:"removed"`
}

type PathRequest struct {
	Account string `json:"account" binding:"required"`
	Path    string `json:"path" binding:"required"`
}
