// Package config loads httpspy plan files.
//
// A plan file describes the spy's server settings and a test plan in YAML
// or JSON:
//
//	server:
//	  port: 8089
//	  path: /api
//	plan:
//	  kind: sequence
//	  expectations:
//	    - request:
//	        method: {equals: POST}
//	        body: {json: '{"name": "x"}'}
//	      response:
//	        status: 201
//	        headers: {Location: [/api/users/1]}
//
// Documents are validated against an embedded JSON Schema before they are
// decoded, then converted into a spy.Config and a plan.Plan:
//
//	file, err := config.LoadFromFile("plan.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p, err := file.BuildPlan()
package config
