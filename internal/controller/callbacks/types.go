package callbacks

import (
	"time"

	"github.com/Freeeeeet/slotswap_bot/internal/controller/state"
	"github.com/Freeeeeet/slotswap_bot/internal/service"
	"go.uber.org/zap"
)

// Handler содержит общие зависимости для всех callback handlers
type Handler struct {
	UserService  *service.UserService
	SlotService  *service.SlotService
	SwapService  *service.SwapService
	StateManager *state.Manager
	Logger       *zap.Logger

	now func() time.Time
}

// NewHandler создаёт новый обработчик callbacks с зависимостями
func NewHandler(
	userService *service.UserService,
	slotService *service.SlotService,
	swapService *service.SwapService,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		UserService:  userService,
		SlotService:  slotService,
		SwapService:  swapService,
		StateManager: stateManager,
		Logger:       logger,
		now:          time.Now,
	}
}
