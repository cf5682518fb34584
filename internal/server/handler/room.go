package handler

import (
	"github.com/palemoky/piramiden/internal/apperrors"
	"github.com/palemoky/piramiden/internal/protocol"
	"github.com/palemoky/piramiden/internal/protocol/request"
	"github.com/palemoky/piramiden/internal/types"
)

func (h *Handler) handleCreateRoom(client types.ClientInterface, req request.Request) (*protocol.AckPayload, error) {
	if h.server.IsMaintenanceMode() {
		return nil, apperrors.ErrServerMaintenance
	}

	room, status, err := h.rooms.Create(client, req.(request.CreateRoom).Name)
	if err != nil {
		return nil, err
	}
	return &protocol.AckPayload{Code: room.Code, Status: &status}, nil
}

func (h *Handler) handleJoinRoom(client types.ClientInterface, req request.Request) (*protocol.AckPayload, error) {
	if h.server.IsMaintenanceMode() {
		return nil, apperrors.ErrServerMaintenance
	}

	join := req.(request.JoinRoom)
	room, status, err := h.rooms.Join(client, join.Code, join.Name)
	if err != nil {
		return nil, err
	}
	return &protocol.AckPayload{Code: room.Code, Status: &status}, nil
}

func (h *Handler) handleStartVote(client types.ClientInterface, _ request.Request) (*protocol.AckPayload, error) {
	return nil, h.rooms.ToggleStartVote(client)
}
