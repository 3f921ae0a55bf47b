package emailer

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
)

// CognitoDirectory looks up contact details in the user pool by sub.
type CognitoDirectory struct {
	client     *cognitoidentityprovider.CognitoIdentityProvider
	userPoolID string
}

func NewCognitoDirectory(client *cognitoidentityprovider.CognitoIdentityProvider, userPoolID string) *CognitoDirectory {
	return &CognitoDirectory{client: client, userPoolID: userPoolID}
}

func (d *CognitoDirectory) ContactByID(cognitoID string) (Contact, error) {
	var contact Contact

	out, err := d.client.ListUsers(&cognitoidentityprovider.ListUsersInput{
		UserPoolId: aws.String(d.userPoolID),
		Limit:      aws.Int64(1),
		Filter:     aws.String(fmt.Sprintf("sub=%q", cognitoID)),
	})
	if err != nil {
		return contact, fmt.Errorf("list users by sub: %w", err)
	}
	if len(out.Users) == 0 {
		// unknown sub surfaces as an empty contact and the request is dropped
		return contact, nil
	}

	for _, attr := range out.Users[0].Attributes {
		switch aws.StringValue(attr.Name) {
		case "email":
			contact.EmailAddress = aws.StringValue(attr.Value)
		case "custom:firstname":
			contact.GivenName = aws.StringValue(attr.Value)
		}
	}
	return contact, nil
}
