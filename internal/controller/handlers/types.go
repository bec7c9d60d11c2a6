package handlers

import (
	"time"

	"github.com/Freeeeeet/slotswap_bot/internal/controller/state"
	"github.com/Freeeeeet/slotswap_bot/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService  *service.UserService
	slotService  *service.SlotService
	swapService  *service.SwapService
	stateManager *state.Manager
	logger       *zap.Logger

	// зона, в которой пользователь вводит время слота
	location *time.Location
	now      func() time.Time
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	userService *service.UserService,
	slotService *service.SlotService,
	swapService *service.SwapService,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:  userService,
		slotService:  slotService,
		swapService:  swapService,
		stateManager: stateManager,
		logger:       logger,
		location:     time.Local,
		now:          time.Now,
	}
}
