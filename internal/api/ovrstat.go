package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gauntlet-queue/internal/config"
	"gauntlet-queue/internal/domain"

	"github.com/valyala/fasthttp"
)

// OvrstatClient pulls public career profiles, used to seed a player's
// per-role ratings at signup.
type OvrstatClient struct {
	baseURL string
	client  *fasthttp.Client
}

func NewOvrstatClient(cfg *config.Config) *OvrstatClient {
	return &OvrstatClient{
		baseURL: strings.TrimRight(cfg.OvrstatBaseURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

type ProfileResponse struct {
	Name    string       `json:"name"`
	Ratings []RoleRating `json:"ratings"`
}

type RoleRating struct {
	Role  string `json:"role"`
	Level int    `json:"level"`
}

// GetProfile fetches the career profile for a battle tag ("Name#1234").
func (c *OvrstatClient) GetProfile(ctx context.Context, battleTag string) (*ProfileResponse, error) {
	url := fmt.Sprintf("%s/stats/pc/%s", c.baseURL, strings.ReplaceAll(battleTag, "#", "-"))
	return doRequest[ProfileResponse](ctx, c, url)
}

// FetchRatings maps a profile's role ratings onto the queueable roles.
// Unplaced roles stay at zero.
func (c *OvrstatClient) FetchRatings(ctx context.Context, battleTag string) (map[domain.Role]int, error) {
	profile, err := c.GetProfile(ctx, battleTag)
	if err != nil {
		return nil, err
	}

	ratings := make(map[domain.Role]int, len(domain.AllRoles))
	for _, r := range profile.Ratings {
		role, err := domain.ParseRole(r.Role)
		if err != nil {
			continue
		}
		ratings[role] = r.Level
	}
	return ratings, nil
}

func doRequest[T any](ctx context.Context, client *OvrstatClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
