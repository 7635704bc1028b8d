// Package approval tracks multi-party sign-off. A director signature round
// ("level") completes once every signer on the roster voted approved; a single
// rejection closes the round. Manager acknowledgment is the 1-of-1 variant.
package approval
