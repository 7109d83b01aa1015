// Package routing implements the order id mangling contract that associates
// provider callbacks with their originating application. An order id seen by
// a provider gateway is always "ApplicationID|LocalOrderID".
package routing

import (
	"strings"

	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

// Separator joins the application id and the local order id.
const Separator = "|"

// Tag prefixes an application-scoped order id with its owning application id.
func Tag(appID, orderID string) string {
	return appID + Separator + orderID
}

// Untag recovers the application id and the local order id. Anything other
// than exactly two segments means the message cannot be routed.
func Untag(tagged string) (appID, orderID string, err error) {
	parts := strings.Split(tagged, Separator)
	if len(parts) != 2 {
		return "", "", errors.Wrap(exception.ErrRoutingBadTag, tagged)
	}
	return parts[0], parts[1], nil
}
