package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tatamedev/tatame-crm/internal/entity"
	"github.com/tatamedev/tatame-crm/internal/infra/integration/appwrite"
)

// AcademyService resolve e mantém a academia do usuário logado.
// Cada usuário tem no máximo uma academia, criada de forma preguiçosa na
// primeira sessão depois do cadastro.
type AcademyService struct {
	repo AcademyRepository
	log  zerolog.Logger
}

func NewAcademyService(repo AcademyRepository, logger zerolog.Logger) *AcademyService {
	return &AcademyService{repo: repo, log: logger}
}

// ResolveByOwner localiza a academia do usuário ou cria uma nova com os
// dados da conta como ponto de partida.
func (s *AcademyService) ResolveByOwner(ctx context.Context, owner appwrite.User) (*entity.Academy, error) {
	academy, err := s.repo.FindByOwner(ctx, owner.ID)
	if err != nil {
		s.log.Error().Err(err).Str("owner_id", owner.ID).Msg("busca de academia falhou")
		return nil, errRemoteFailure("resolveAcademy")
	}
	if academy != nil {
		return academy, nil
	}

	created, err := s.repo.Create(ctx, &entity.Academy{
		Name:    owner.Name,
		Email:   owner.Email,
		OwnerID: owner.ID,
	})
	if err != nil {
		s.log.Error().Err(err).Str("owner_id", owner.ID).Msg("criação de academia falhou")
		return nil, errRemoteFailure("createAcademy")
	}

	s.log.Info().Str("academy_id", created.ID).Str("owner_id", owner.ID).Msg("academia criada para o usuário")
	return created, nil
}

// Update grava os dados de contato da academia. Id, dono e createdAt
// nunca mudam.
func (s *AcademyService) Update(ctx context.Context, academy *entity.Academy) error {
	if err := s.repo.Update(ctx, academy); err != nil {
		s.log.Error().Err(err).Str("academy_id", academy.ID).Msg("atualização de academia falhou")
		return errRemoteFailure("updateAcademy")
	}
	return nil
}
