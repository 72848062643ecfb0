// Package duality derives three validation variants from one canonical model
// declaration:
//
//   - Request: strict validation for inbound input (unknown keys rejected)
//   - Response: lenient validation for outbound output (unknown keys dropped)
//   - PatchRequest: the Request field set with every field optional, for PATCH
//
// A canonical model and its Request variant form one logical entity: Equal and
// HashKey treat them as the same, and parsing through the model delegates to
// the Request variant. Response and PatchRequest are synthesized lazily on
// first access and cached for the lifetime of the model, which is what lets
// self-referential and mutually-referencing models resolve.
//
// Design policy:
//   - Keep only public APIs in the root package; the default validator engine
//     lives under internal/engine and is wired in by the dsl package.
//   - Place the schema-author builder and the YAML loader under dsl/.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	user := dsl.Base("User").
//		Field("id", duality.String()).Required().
//		Field("name", duality.String()).Default("anonymous").
//		MustBuild()
//
//	inst, err := duality.ParseFrom(ctx, user.Request(), duality.JSONBytes(data))
//	patch, err := user.PatchRequest().Parse(ctx, raw)
package duality
