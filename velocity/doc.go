// Package velocity implements the Type II velocity-based on-line
// trajectory generator: the standalone mode that drives every selected
// axis towards a target velocity directly, with no position target and
// no Step 1/2 profile search — rml.VelocityKernel's closed form is exact
// and needs no re-parameterization, so this orchestrator is considerably
// simpler than package position.
package velocity
