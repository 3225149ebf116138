package auth

import (
	"time"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/repository"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// ClientTokenTTL bounds service client access tokens
const ClientTokenTTL = 2 * time.Hour

type OAuthService struct {
	server *server.Server
}

// NewOAuthService wires the go-oauth2 server for the client_credentials grant.
// Access tokens are JWTs signed with the same secret as user tokens.
func NewOAuthService(db *gorm.DB, users repository.UserRepository, clients repository.ClientRepository, jwtSecret string) *OAuthService {
	manager := manage.NewDefaultManager()
	manager.SetClientTokenCfg(&manage.Config{AccessTokenExp: ClientTokenTTL})

	manager.MapAccessGenerate(NewCustomJWTAccessGenerate([]byte(jwtSecret), jwt.SigningMethodHS256, users))
	manager.MustTokenStorage(NewGormTokenStore(db), nil)
	manager.MapClientStorage(NewClientStore(clients))

	srv := server.NewDefaultServer(manager)
	srv.SetAllowedGrantType(oauth2.ClientCredentials)
	srv.SetClientInfoHandler(server.ClientFormHandler)

	return &OAuthService{server: srv}
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}
