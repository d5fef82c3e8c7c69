package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/NaveLIL/sysmond/models"
)

// SensorsTemperatures returns current sensor readings.
func (p *PsutilProvider) SensorsTemperatures(ctx context.Context) ([]TemperatureStat, error) {
	temps, err := host.SensorsTemperaturesWithContext(ctx)
	if len(temps) == 0 {
		if err != nil {
			return nil, fmt.Errorf("sensors temperatures: %w: %v", ErrNotSupported, err)
		}
		return nil, nil
	}

	// gopsutil returns partial readings together with a warnings error;
	// the readings it did get are still valid.
	result := make([]TemperatureStat, 0, len(temps))
	for _, t := range temps {
		result = append(result, TemperatureStat{
			Sensor:  t.SensorKey,
			Current: t.Temperature,
		})
	}
	return result, nil
}

// BootTime returns when the host last booted.
func (p *PsutilProvider) BootTime(ctx context.Context) (time.Time, error) {
	secs, err := host.BootTimeWithContext(ctx)
	if err != nil {
		return time.Time{}, classify("boot time", err)
	}
	return time.Unix(int64(secs), 0), nil
}

// HostInfo returns static host information.
func (p *PsutilProvider) HostInfo(ctx context.Context) (*models.HostInfo, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, classify("host info", err)
	}

	cores, _ := p.CPUCoreCount(ctx)
	return &models.HostInfo{
		Hostname: info.Hostname,
		OS:       info.OS,
		Platform: fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion),
		Kernel:   info.KernelVersion,
		CPUCores: cores,
	}, nil
}
