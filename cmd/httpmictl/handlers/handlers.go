// Package handlers implements the httpmictl commands against a node's httpmi proxy.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"sigs.k8s.io/yaml"

	"github.com/alexandremahdhaoui/secureboot/internal/adapter"
	"github.com/alexandremahdhaoui/secureboot/internal/controller"
	"github.com/alexandremahdhaoui/secureboot/internal/types"
	"github.com/alexandremahdhaoui/secureboot/internal/util/tlsutil"
)

const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

var (
	ErrReadNode      = errors.New("reading node file")
	ErrInvalidOutput = errors.New("invalid output format")
	ErrInvalidState  = errors.New("invalid power state")
)

// Options are shared by every command.
type Options struct {
	// NodePath is the YAML file describing the node.
	NodePath string
	// Output is one of "text", "json" or "yaml".
	Output  string
	Timeout time.Duration
	TLS     tlsutil.ClientConfig
}

// NodeFile is the on-disk description of a node.
type NodeFile struct {
	UUID         string            `json:"uuid,omitempty"`
	DriverInfo   map[string]string `json:"driverInfo"`
	InstanceInfo map[string]string `json:"instanceInfo,omitempty"`
}

// LoadNode reads a NodeFile. A missing uuid is replaced by uuid.Nil.
func LoadNode(path string) (types.Node, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return types.Node{}, errors.Join(err, ErrReadNode)
	}

	var f NodeFile
	if err := yaml.UnmarshalStrict(b, &f); err != nil {
		return types.Node{}, errors.Join(err, ErrReadNode)
	}

	node := types.Node{
		UUID:         uuid.Nil,
		DriverInfo:   f.DriverInfo,
		InstanceInfo: f.InstanceInfo,
	}

	if f.UUID != "" {
		if node.UUID, err = uuid.Parse(f.UUID); err != nil {
			return types.Node{}, errors.Join(err, ErrReadNode)
		}
	}

	return node, nil
}

// ParsePowerState accepts "on", "off" and the full "power on"/"power off" forms.
func ParsePowerState(s string) (types.PowerState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", string(types.PowerOn):
		return types.PowerOn, nil
	case "off", string(types.PowerOff):
		return types.PowerOff, nil
	default:
		return "", fmt.Errorf("%w: %q (valid values: on, off)", ErrInvalidState, s)
	}
}

// ----------------------------------------------------- POWER ------------------------------------------------------ //

func PowerGet(ctx context.Context, out io.Writer, opts Options) error {
	node, hw, err := setup(opts)
	if err != nil {
		return err
	}

	state, err := hw.Power.GetPowerState(ctx, node)
	if err != nil {
		return err
	}

	return render(out, opts.Output, map[string]any{"state": state}, string(state))
}

func PowerSet(ctx context.Context, out io.Writer, opts Options, state types.PowerState) error {
	node, hw, err := setup(opts)
	if err != nil {
		return err
	}

	if err := hw.Power.SetPowerState(ctx, node, state); err != nil {
		return err
	}

	return render(out, opts.Output, map[string]any{"state": state}, string(state))
}

func PowerReboot(ctx context.Context, out io.Writer, opts Options) error {
	node, hw, err := setup(opts)
	if err != nil {
		return err
	}

	if err := hw.Power.Reboot(ctx, node); err != nil {
		return err
	}

	return render(out, opts.Output, map[string]any{"rebooted": true}, "rebooted")
}

// -------------------------------------------------- BOOT DEVICE --------------------------------------------------- //

func BootDeviceGet(ctx context.Context, out io.Writer, opts Options) error {
	node, hw, err := setup(opts)
	if err != nil {
		return err
	}

	device, err := hw.Management.GetBootDevice(ctx, node)
	if err != nil {
		return err
	}

	return render(out, opts.Output, map[string]any{"device": device}, string(device))
}

func BootDeviceSet(ctx context.Context, out io.Writer, opts Options, device types.BootDevice, persistent bool) error {
	node, hw, err := setup(opts)
	if err != nil {
		return err
	}

	if err := controller.NewBootDeviceSetter(hw.Management).SetBootDevice(ctx, node, device, persistent); err != nil {
		return err
	}

	return render(out, opts.Output, map[string]any{"device": device, "persistent": persistent}, string(device))
}

func BootDeviceSupported(ctx context.Context, out io.Writer, opts Options) error {
	node, hw, err := setup(opts)
	if err != nil {
		return err
	}

	devices := hw.Management.GetSupportedBootDevices(ctx, node)

	names := make([]string, 0, len(devices))
	for _, d := range devices {
		names = append(names, string(d))
	}

	return render(out, opts.Output, map[string]any{"devices": devices}, strings.Join(names, "\n"))
}

// ---------------------------------------------------- VALIDATE ---------------------------------------------------- //

// Validate checks the node file carries everything the power and management interfaces need. No proxy
// call is made.
func Validate(ctx context.Context, out io.Writer, opts Options) error {
	node, hw, err := setup(opts)
	if err != nil {
		return err
	}

	if err := hw.Validate(ctx, node); err != nil {
		return err
	}

	return render(out, opts.Output, map[string]any{"valid": true}, "valid")
}

// ----------------------------------------------------- HELPERS ---------------------------------------------------- //

type interfaces struct {
	Power      controller.PowerInterface
	Management controller.ManagementInterface
}

// Validate joins the validation errors of both interfaces.
func (i interfaces) Validate(ctx context.Context, node types.Node) error {
	return errors.Join(i.Power.Validate(ctx, node), i.Management.Validate(ctx, node))
}

func setup(opts Options) (types.Node, interfaces, error) {
	if err := checkOutput(opts.Output); err != nil {
		return types.Node{}, interfaces{}, err
	}

	node, err := LoadNode(opts.NodePath)
	if err != nil {
		return types.Node{}, interfaces{}, err
	}

	tlsConfig, err := tlsutil.BuildClientTLSConfig(&opts.TLS)
	if err != nil {
		return types.Node{}, interfaces{}, err
	}

	httpmi := adapter.NewHTTPMI(adapter.HTTPMIOptions{TLSConfig: tlsConfig, Timeout: opts.Timeout})

	return node, interfaces{
		Power:      controller.NewHTTPMIPower(httpmi),
		Management: controller.NewHTTPMIManagement(httpmi),
	}, nil
}

func checkOutput(output string) error {
	switch output {
	case "", OutputText, OutputJSON, OutputYAML:
		return nil
	default:
		return fmt.Errorf("%w: %q (valid values: text, json, yaml)", ErrInvalidOutput, output)
	}
}

func render(out io.Writer, output string, v any, text string) error {
	var (
		b   []byte
		err error
	)

	switch output {
	case OutputJSON:
		b, err = json.MarshalIndent(v, "", "  ")
		b = append(b, '\n')
	case OutputYAML:
		b, err = yaml.Marshal(v)
	default:
		b = []byte(text + "\n")
	}

	if err != nil {
		return err
	}

	_, err = out.Write(b)

	return err
}
