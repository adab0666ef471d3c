// Package razor compiles Razor-style templates into Go source code.
//
// Templates mix markup with Go code islands introduced by '@':
//
//	@model *app.User
//	<h1>Hello, @Model.Name!</h1>
//	@if Model.Admin {
//	    <p>@(len(Model.Roles)) roles</p>
//	}
//
// # Basic Usage
//
// Create a host over a code tree cache and generate code:
//
//	provider, _ := razor.NewOSFileProvider("views")
//	cache := razor.NewDefaultCodeTreeCache(provider, razor.DefaultCodeTreeCacheConfig())
//	host, err := razor.NewHost(cache, razor.WithApplicationRoot("views"))
//	results, err := host.GenerateCode(ctx, "views/home/index.gohtml", file)
//	// results.GeneratedCode holds the Go source of type home_index
//
// # Inheritance
//
// Every directory from the page up to the application root may hold a
// _ViewStart.gohtml file. Its @using, @inherits, @inject and @addTagHelper
// directives apply to every page below it. Nearer files override farther
// ones and the page's own directives win.
//
// # Design-Time Mode
//
// WithDesignTimeMode(true) generates code for editor tooling: each
// expression, statement and directive value of the page is mapped to the
// generated text holding it, see GeneratorResults.DesignTimeLineMappings.
//
// # Tag Helpers
//
// Tag helpers registered with WithTagHelpers and enabled by @addTagHelper
// turn matching elements into helper invocations. Each element gets an id
// from the configured IDGenerator; WithFixedTagHelperIDs makes output stable
// for comparisons.
package razor
