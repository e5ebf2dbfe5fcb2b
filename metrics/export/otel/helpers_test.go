package otel

import (
	"context"

	"github.com/MrEthical07/authgraph/graph"
)

type nopBackend struct{}

func (nopBackend) Login(context.Context, graph.LoginRequest) (graph.LoginResult, error) {
	return graph.LoginResult{}, graph.NewBackendError("login", graph.CodeNotFound, nil)
}

func (nopBackend) CreateUser(context.Context, graph.ContinuanceToken) (graph.UserID, error) {
	return graph.NoUserID, graph.NewBackendError("create_user", graph.CodeUnavailable, nil)
}

func (nopBackend) SignOut(context.Context, graph.UserID) error { return nil }
