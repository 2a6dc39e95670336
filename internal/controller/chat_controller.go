package controller

import (
	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/pkg/apperror"
	"realtime-chat-be/internal/pkg/serverutils"
	"realtime-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateChat(ctx *fiber.Ctx) error
	CreateGroupChat(ctx *fiber.Ctx) error
	AddToGroup(ctx *fiber.Ctx) error
	ListChats(ctx *fiber.Ctx) error
	GetChat(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService    service.IChatService
	messageService service.IMessageService
}

func NewChatController(chatService service.IChatService, messageService service.IMessageService) IChatController {
	return &chatController{
		chatService:    chatService,
		messageService: messageService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chats", serverutils.JwtMiddleware)
	h.Post("/", c.CreateChat)
	h.Get("/", c.ListChats)
	h.Post("/group", c.CreateGroupChat)
	h.Post("/group/:id/participants", c.AddToGroup)
	h.Get("/:id", c.GetChat)
	h.Get("/:id/messages", c.GetMessages)
	h.Post("/:id/messages", c.SendMessage)
}

func (c *chatController) CreateChat(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return err
	}

	res, err := c.chatService.CreateChat(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "OK",
		"data":    res,
	})
}

func (c *chatController) CreateGroupChat(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateGroupChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return err
	}

	res, err := c.chatService.CreateGroupChat(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"code":    201,
		"message": "Group created",
		"data":    res,
	})
}

func (c *chatController) AddToGroup(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	groupId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.InvalidArgument("invalid chat ID format")
	}

	var req dto.AddToGroupRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return err
	}

	res, err := c.chatService.AddUserToGroup(ctx.Context(), userId, groupId, req.UserId)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Participant added",
		"data":    res,
	})
}

func (c *chatController) ListChats(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.ListChats(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "OK",
		"data":    res,
	})
}

func (c *chatController) GetChat(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.GetChat(ctx.Context(), userId, ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "OK",
		"data":    res,
	})
}

func (c *chatController) GetMessages(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	page := ctx.QueryInt("page", 1)
	limit := ctx.QueryInt("limit", 20)

	res, err := c.chatService.GetMessages(ctx.Context(), userId, ctx.Params("id"), page, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "OK",
		"data":    res,
	})
}

// SendMessage runs the same pipeline as the socket sendMessage event, so
// REST clients get identical persistence and fan-out behavior.
func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var body struct {
		Content string `json:"content" validate:"required"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateStruct(&body); err != nil {
		return err
	}

	res, err := c.messageService.Send(ctx.Context(), ctx.Params("id"), userId, body.Content)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"code":    201,
		"message": "Message sent",
		"data":    res,
	})
}
