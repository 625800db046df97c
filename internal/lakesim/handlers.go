package lakesim

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tidelake/lakeacl/internal/lake"
	"github.com/tidelake/lakeacl/internal/version"
)

func (s *Server) handleIndex(c *gin.Context) {
	c.String(http.StatusOK, version.DetailedWithApp())
}

func (s *Server) handleHealth(c *gin.Context) {
	c.PureJSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	acct, err := s.store.Authenticate(c.Request.Context(), req.Account, req.Key)
	if errors.Is(err, ErrBadCredentials) {
		abortError(c, http.StatusUnauthorized, CodeBadCredentials, "unknown account or bad key")
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, CodeInternalError, err.Error())
		return
	}

	token, _, err := s.auth.IssueToken(acct)
	if err != nil {
		abortError(c, http.StatusInternalServerError, CodeInternalError, err.Error())
		return
	}

	c.PureJSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.auth.TTL().Seconds()),
	})
}

func (s *Server) handleAccountView(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		abortError(c, http.StatusBadRequest, CodeInvalidRequest, "name is required")
		return
	}
	if name != c.GetString(ctxAccount) {
		abortError(c, http.StatusForbidden, CodeAccessDenied, "token is not scoped to this account")
		return
	}

	acct, err := s.store.AccountByName(c.Request.Context(), name)
	if errors.Is(err, ErrAccountNotFound) {
		abortError(c, http.StatusNotFound, CodeAccountNotFound, "no such account")
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, CodeInternalError, err.Error())
		return
	}

	c.PureJSON(http.StatusOK, AccountViewResponse{
		Name:         acct.Name,
		StoreAccount: acct.StoreAccount,
		Location:     acct.Location,
	})
}

// checkStoreScope rejects calls against any store account the token
// was not minted for.
func (s *Server) checkStoreScope(c *gin.Context, account string) bool {
	if account == "" {
		abortError(c, http.StatusBadRequest, CodeInvalidRequest, "account is required")
		return false
	}
	if account != c.GetString(ctxStore) {
		abortError(c, http.StatusForbidden, CodeAccessDenied, "token is not scoped to this store account")
		return false
	}
	return true
}

func (s *Server) handleStoreStatus(c *gin.Context) {
	account, path := c.Query("account"), c.Query("path")
	if path == "" {
		abortError(c, http.StatusBadRequest, CodeInvalidRequest, "path is required")
		return
	}
	if !s.checkStoreScope(c, account) {
		return
	}

	node, err := s.store.NodeAt(c.Request.Context(), account, path)
	if errors.Is(err, ErrPathNotFound) {
		// Absence is an answer here, not an error.
		c.PureJSON(http.StatusOK, StatusResponse{
			Account: account,
			Path:    lake.CleanPath(path),
			Exists:  false,
		})
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, CodeInternalError, err.Error())
		return
	}

	c.PureJSON(http.StatusOK, StatusResponse{
		Account: account,
		Path:    node.Path,
		Exists:  true,
		Type:    node.Type,
	})
}

func (s *Server) handleStoreList(c *gin.Context) {
	account, path := c.Query("account"), c.Query("path")
	if path == "" {
		abortError(c, http.StatusBadRequest, CodeInvalidRequest, "path is required")
		return
	}
	if !s.checkStoreScope(c, account) {
		return
	}

	ctx := c.Request.Context()
	node, err := s.store.NodeAt(ctx, account, path)
	if errors.Is(err, ErrPathNotFound) {
		abortError(c, http.StatusNotFound, CodePathNotFound, "path does not exist")
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, CodeInternalError, err.Error())
		return
	}
	if node.Type != string(lake.NodeDirectory) {
		abortError(c, http.StatusBadRequest, CodeNotADirectory, "cannot list a file")
		return
	}

	children, err := s.store.Children(ctx, account, node.Path)
	if err != nil {
		abortError(c, http.StatusInternalServerError, CodeInternalError, err.Error())
		return
	}

	entries := make([]ListEntry, 0, len(children))
	for i := range children {
		entries = append(entries, ListEntry{
			Name: children[i].Name(),
			Type: children[i].Type,
		})
	}

	c.PureJSON(http.StatusOK, ListResponse{
		Account: account,
		Path:    node.Path,
		Entries: entries,
	})
}

func (s *Server) handleGetAcl(c *gin.Context) {
	account, path := c.Query("account"), c.Query("path")
	if path == "" {
		abortError(c, http.StatusBadRequest, CodeInvalidRequest, "path is required")
		return
	}
	if !s.checkStoreScope(c, account) {
		return
	}

	ctx := c.Request.Context()
	node, err := s.store.NodeAt(ctx, account, path)
	if errors.Is(err, ErrPathNotFound) {
		abortError(c, http.StatusNotFound, CodePathNotFound, "path does not exist")
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, CodeInternalError, err.Error())
		return
	}

	aces, err := s.store.Aces(ctx, account, node.Path)
	if err != nil {
		abortError(c, http.StatusInternalServerError, CodeInternalError, err.Error())
		return
	}

	views := make([]AceView, 0, len(aces))
	for _, ace := range aces {
		views = append(views, AceView{
			Scope:     ace.Scope,
			Type:      ace.EntityType,
			Qualifier: ace.Qualifier,
			Perms:     ace.Perms,
		})
	}

	c.PureJSON(http.StatusOK, AclResponse{
		Account: account,
		Path:    node.Path,
		Aces:    views,
	})
}

func (s *Server) handleRemoveAcl(c *gin.Context) {
	var req RemoveAclRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}
	if !s.checkStoreScope(c, req.Account) {
		return
	}

	entries, err := lake.ParseAceEntries(req.Aces)
	if err != nil {
		abortError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	node, err := s.store.NodeAt(ctx, req.Account, req.Path)
	if errors.Is(err, ErrPathNotFound) {
		abortError(c, http.StatusNotFound, CodePathNotFound, "path does not exist")
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, CodeInternalError, err.Error())
		return
	}

	removed, err := s.store.RemoveAces(ctx, req.Account, node.Path, entries)
	if err != nil {
		abortError(c, http.StatusInternalServerError, CodeInternalError, err.Error())
		return
	}

	c.PureJSON(http.StatusOK, RemoveAclResponse{
		Path:    node.Path,
		Removed: removed,
	})
}

func (s *Server) handleMkdir(c *gin.Context) {
	var req PathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}
	if !s.checkStoreScope(c, req.Account) {
		return
	}

	if err := s.store.EnsureDir(c.Request.Context(), req.Account, req.Path); err != nil {
		status, code := http.StatusInternalServerError, CodeInternalError
		if errors.Is(err, ErrNotADirectory) {
			status, code = http.StatusConflict, CodeNotADirectory
		}
		abortError(c, status, code, err.Error())
		return
	}

	c.PureJSON(http.StatusOK, StatusResponse{
		Account: req.Account,
		Path:    lake.CleanPath(req.Path),
		Exists:  true,
		Type:    string(lake.NodeDirectory),
	})
}

func (s *Server) handleCreateFile(c *gin.Context) {
	var req PathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}
	if !s.checkStoreScope(c, req.Account) {
		return
	}

	if err := s.store.CreateFile(c.Request.Context(), req.Account, req.Path); err != nil {
		status, code := http.StatusInternalServerError, CodeInternalError
		if errors.Is(err, ErrNotADirectory) || errors.Is(err, ErrTypeConflict) {
			status, code = http.StatusConflict, CodeNotADirectory
		}
		abortError(c, status, code, err.Error())
		return
	}

	c.PureJSON(http.StatusOK, StatusResponse{
		Account: req.Account,
		Path:    lake.CleanPath(req.Path),
		Exists:  true,
		Type:    string(lake.NodeFile),
	})
}
