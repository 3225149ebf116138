package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/repository"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// CreatedClient carries the plain secret, which is only ever shown once
type CreatedClient struct {
	Client *models.OAuthClient `json:"client"`
	Secret string              `json:"clientSecret"`
}

type ClientService interface {
	CreateClient(ctx context.Context, ownerID uint, req models.ClientRequest) (*CreatedClient, error)
	ListClients(ctx context.Context, ownerID uint) ([]models.OAuthClient, error)
	DeleteClient(ctx context.Context, clientID string, ownerID uint) error
}

type clientService struct {
	clients repository.ClientRepository
}

func NewClientService(clients repository.ClientRepository) ClientService {
	return &clientService{clients: clients}
}

func (s *clientService) CreateClient(ctx context.Context, ownerID uint, req models.ClientRequest) (*CreatedClient, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: client name is required", ErrValidation)
	}

	secret := uuid.New().String()
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash client secret: %w", err)
	}

	client := &models.OAuthClient{
		ID:     uuid.New().String(),
		Secret: string(hashed),
		Name:   name,
		Domain: req.Domain,
		UserID: ownerID,
		Scopes: req.Scopes,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"client_id": client.ID, "owner_id": ownerID}).Info("OAuth client created")
	return &CreatedClient{Client: client, Secret: secret}, nil
}

func (s *clientService) ListClients(ctx context.Context, ownerID uint) ([]models.OAuthClient, error) {
	clients, err := s.clients.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if clients == nil {
		clients = []models.OAuthClient{}
	}
	return clients, nil
}

func (s *clientService) DeleteClient(ctx context.Context, clientID string, ownerID uint) error {
	if err := s.clients.Delete(ctx, clientID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}
	log.WithFields(log.Fields{"client_id": clientID, "owner_id": ownerID}).Info("OAuth client deleted")
	return nil
}
