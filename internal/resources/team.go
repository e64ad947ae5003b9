package resources

import (
	"context"

	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/apiclient"
)

const teamPath = "/team/members"

type TeamMember struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Invited  bool   `json:"invited"`
}

// Team exposes the team-member resource.
type Team struct {
	api *apiclient.Client
}

func NewTeam(api *apiclient.Client) *Team {
	return &Team{api: api}
}

func (c *Team) List(ctx context.Context) ([]TeamMember, error) {
	var result page[TeamMember]
	if err := c.api.Get(ctx, teamPath, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *Team) Invite(ctx context.Context, email, role string) (*TeamMember, error) {
	var member TeamMember
	err := c.api.Post(ctx, teamPath, &apiclient.Options{
		Body: map[string]string{"email": email, "role": role},
	}, &member)
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *Team) Remove(ctx context.Context, id string) error {
	return c.api.Delete(ctx, teamPath+"/"+id, nil, nil)
}
