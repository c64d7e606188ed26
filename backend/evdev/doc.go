// SPDX-License-Identifier: Unlicense OR MIT

/*
Package evdev implements the native Linux input backend. Devices are
discovered and hot-plugged through udev, read through the kernel's
evdev interface, and multiplexed onto one event channel as the single
seat seat0.
*/
package evdev
