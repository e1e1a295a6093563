package serve

// CreateAPI is the single entry point for wrapping a model in a web API:
// validate the task tag, resolve processing defaults, and build the route
// table. When run is true the server is started on addr and this call
// blocks; otherwise the constructed API is returned without any server
// process being started.
func CreateAPI(cfg Config, run bool, addr string) (*API, error) {
	api, err := NewAPI(cfg)
	if err != nil {
		return nil, err
	}

	if run {
		if err := api.Run(addr); err != nil {
			return api, err
		}
	}
	return api, nil
}
