/*
Copyright 2024 Alexandre Mahdhaoui

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/alexandremahdhaoui/secureboot/internal/controller"
	"github.com/alexandremahdhaoui/secureboot/internal/types"
	"github.com/alexandremahdhaoui/secureboot/internal/util/httputil"
)

const nodeUUIDParam = "nodeUUID"

var (
	ErrBindNodeUUID  = errors.New("binding node uuid")
	ErrDecodeRequest = errors.New("decoding request body")
	ErrNewServer     = errors.New("creating api server")
)

// NodeRequest is the body of every node operation. The node is passed by value: the agent keeps no node state.
type NodeRequest struct {
	DriverInfo    map[string]string `json:"driverInfo,omitempty"`
	InstanceInfo  map[string]string `json:"instanceInfo,omitempty"`
	RamdiskParams map[string]string `json:"ramdiskParams,omitempty"`

	State      types.PowerState `json:"state,omitempty"`
	Device     types.BootDevice `json:"device,omitempty"`
	Persistent bool             `json:"persistent,omitempty"`
}

type PowerStateResponse struct {
	State types.PowerState `json:"state"`
}

type BootDeviceResponse struct {
	Device types.BootDevice `json:"device"`
}

type BootDevicesResponse struct {
	Devices []types.BootDevice `json:"devices"`
}

type SensorsResponse struct {
	Sensors map[string]any `json:"sensors"`
}

type HardwareResponse struct {
	Name         string            `json:"name"`
	Capabilities []string          `json:"capabilities"`
	Properties   map[string]string `json:"properties"`
}

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Options configures the API server.
type Options struct {
	// Log receives one line per request. The zero value discards.
	Log     logr.Logger
	Metrics *Metrics
}

// New returns the handler serving the hardware type over HTTP.
func New(ctx context.Context, hardware *controller.Hardware, opts Options) (http.Handler, error) {
	router, err := newRouter(ctx)
	if err != nil {
		return nil, errors.Join(err, ErrNewServer)
	}

	s := &server{hardware: hardware}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/hardware", s.getHardware)

	for path, op := range map[string]nodeOperation{
		"/boot/validate":                     s.validateBoot,
		"/boot/prepare-ramdisk":              s.prepareRamdisk,
		"/boot/clean-up-ramdisk":             s.cleanUpRamdisk,
		"/boot/prepare-instance":             s.prepareInstance,
		"/boot/clean-up-instance":            s.cleanUpInstance,
		"/power/get":                         s.getPowerState,
		"/power/set":                         s.setPowerState,
		"/power/reboot":                      s.reboot,
		"/management/supported-boot-devices": s.getSupportedBootDevices,
		"/management/boot-device/get":        s.getBootDevice,
		"/management/boot-device/set":        s.setBootDevice,
		"/management/sensors":                s.getSensorsData,
		"/validate":                          s.validate,
	} {
		mux.Handle("POST /v1/nodes/{"+nodeUUIDParam+"}"+path, op)
	}

	return Chain(mux,
		ClientIPMiddleware,
		LoggingMiddleware(opts.Log, opts.Metrics),
		ValidationMiddleware(router),
	), nil
}

type server struct {
	hardware *controller.Hardware
}

// nodeOperation runs an operation on the node decoded from the request. A nil response is written as 204.
type nodeOperation func(ctx context.Context, node types.Node, req NodeRequest) (any, error)

func (op nodeOperation) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var nodeUUID uuid.UUID

	if err := runtime.BindStyledParameterWithOptions(
		"simple",
		nodeUUIDParam,
		r.PathValue(nodeUUIDParam),
		&nodeUUID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true},
	); err != nil {
		writeError(w, r, http.StatusBadRequest, errors.Join(err, ErrBindNodeUUID))
		return
	}

	var req NodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, errors.Join(err, ErrDecodeRequest))
		return
	}

	node := types.Node{
		UUID:         nodeUUID,
		DriverInfo:   req.DriverInfo,
		InstanceInfo: req.InstanceInfo,
	}

	resp, err := op(r.Context(), node, req)
	if err != nil {
		writeError(w, r, errorStatus(err), err)
		return
	}

	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------- HARDWARE ---------------------------------------------------- //

func (s *server) getHardware(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, HardwareResponse{
		Name:         s.hardware.Name,
		Capabilities: s.hardware.Boot.Capabilities(),
		Properties:   s.hardware.Properties(),
	})
}

func (s *server) validate(ctx context.Context, node types.Node, _ NodeRequest) (any, error) {
	return nil, s.hardware.Validate(ctx, node)
}

// ------------------------------------------------------ BOOT ------------------------------------------------------ //

func (s *server) validateBoot(ctx context.Context, node types.Node, _ NodeRequest) (any, error) {
	return nil, s.hardware.Boot.Validate(ctx, node)
}

func (s *server) prepareRamdisk(ctx context.Context, node types.Node, req NodeRequest) (any, error) {
	return nil, s.hardware.Boot.PrepareRamdisk(ctx, node, req.RamdiskParams)
}

func (s *server) cleanUpRamdisk(ctx context.Context, node types.Node, _ NodeRequest) (any, error) {
	return nil, s.hardware.Boot.CleanUpRamdisk(ctx, node)
}

func (s *server) prepareInstance(ctx context.Context, node types.Node, _ NodeRequest) (any, error) {
	return nil, s.hardware.Boot.PrepareInstance(ctx, node)
}

func (s *server) cleanUpInstance(ctx context.Context, node types.Node, _ NodeRequest) (any, error) {
	return nil, s.hardware.Boot.CleanUpInstance(ctx, node)
}

// ------------------------------------------------------ POWER ----------------------------------------------------- //

func (s *server) getPowerState(ctx context.Context, node types.Node, _ NodeRequest) (any, error) {
	state, err := s.hardware.Power.GetPowerState(ctx, node)
	if err != nil {
		return nil, err
	}

	return PowerStateResponse{State: state}, nil
}

func (s *server) setPowerState(ctx context.Context, node types.Node, req NodeRequest) (any, error) {
	return nil, s.hardware.Power.SetPowerState(ctx, node, req.State)
}

func (s *server) reboot(ctx context.Context, node types.Node, _ NodeRequest) (any, error) {
	return nil, s.hardware.Power.Reboot(ctx, node)
}

// --------------------------------------------------- MANAGEMENT --------------------------------------------------- //

func (s *server) getSupportedBootDevices(ctx context.Context, node types.Node, _ NodeRequest) (any, error) {
	return BootDevicesResponse{Devices: s.hardware.Management.GetSupportedBootDevices(ctx, node)}, nil
}

func (s *server) getBootDevice(ctx context.Context, node types.Node, _ NodeRequest) (any, error) {
	device, err := s.hardware.Management.GetBootDevice(ctx, node)
	if err != nil {
		return nil, err
	}

	return BootDeviceResponse{Device: device}, nil
}

func (s *server) setBootDevice(ctx context.Context, node types.Node, req NodeRequest) (any, error) {
	return nil, controller.NewBootDeviceSetter(s.hardware.Management).
		SetBootDevice(ctx, node, req.Device, req.Persistent)
}

func (s *server) getSensorsData(ctx context.Context, node types.Node, _ NodeRequest) (any, error) {
	sensors, err := s.hardware.Management.GetSensorsData(ctx, node)
	if err != nil {
		return nil, err
	}

	return SensorsResponse{Sensors: sensors}, nil
}

// ----------------------------------------------------- ERRORS ----------------------------------------------------- //

func errorStatus(err error) int {
	switch {
	case errors.Is(err, types.ErrConfiguration), errors.Is(err, types.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrRemoteControl):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	log := logr.FromContextOrDiscard(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(err, "request failed", "status", status)
	} else {
		log.V(1).Info("request rejected", "status", status, "error", err.Error())
	}

	httputil.WriteJSON(w, status, ErrorResponse{Code: status, Message: err.Error()})
}
