package reader

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/giuliom95/baker2/asset"
	"github.com/giuliom95/baker2/asset/mesh"
	"github.com/giuliom95/baker2/log"
	"github.com/giuliom95/baker2/types"
)

type wavefrontMeshReader struct {
	logger log.Logger

	// The parsed mesh.
	mesh *mesh.Mesh

	// True if the mesh name was set by an "o" or "g" directive.
	named bool

	// True if at least one face did not reference a normal/uv.
	missingNormals bool
	missingUVs     bool

	// An error stack that provides additional error information when
	// mesh files include other files via "call".
	errStack []string
}

// Create a new wavefront mesh reader.
func newWavefrontReader() *wavefrontMeshReader {
	return &wavefrontMeshReader{
		logger:   log.New("wavefront reader"),
		errStack: make([]string, 0),
	}
}

// Read mesh definition.
func (r *wavefrontMeshReader) Read(meshRes *asset.Resource) (*mesh.Mesh, error) {
	r.logger.Noticef(`parsing mesh from "%s"`, meshRes.Path())
	start := time.Now()

	r.mesh = mesh.New(strings.TrimSuffix(meshRes.Name(), meshRes.Ext()))
	err := r.parse(meshRes)
	if err != nil {
		return nil, err
	}

	if r.mesh.NumTriangles() == 0 {
		return nil, r.emitError("", 0, "mesh %q contains no faces", r.mesh.Name)
	}

	fixupAttributes(r.logger, r.mesh, r.missingNormals, r.missingUVs)

	r.logger.Noticef(
		"parsed mesh %q in %d ms (%d positions, %d normals, %d uvs, %d triangles)",
		r.mesh.Name, time.Since(start).Nanoseconds()/1e6,
		len(r.mesh.Positions), len(r.mesh.Normals), len(r.mesh.UVs), r.mesh.NumTriangles(),
	)
	return r.mesh, nil
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontMeshReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = strings.Trim(
			fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	} else {
		errMsg = strings.Trim(
			fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	}

	return fmt.Errorf("%s", errMsg)
}

// Push a frame to the error stack.
func (r *wavefrontMeshReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontMeshReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Parse wavefront object format. Material, smoothing group and grouping
// directives are ignored; all faces are merged into a single mesh.
func (r *wavefrontMeshReader) parse(res *asset.Resource) error {
	var lineNum int = 0

	// An included obj file uses 1-based indices relative to its own
	// definitions. By tracking the current position/uv/normal offsets we can
	// apply them while parsing faces to select the correct coordinates.
	relPositionOffset := len(r.mesh.Positions)
	relUvOffset := len(r.mesh.UVs)
	relNormalOffset := len(r.mesh.Normals)

	scanner := bufio.NewScanner(res)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}

			err = r.parse(incRes)
			incRes.Close()
			if err != nil {
				return err
			}
			r.popFrame()
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.mesh.Positions = append(r.mesh.Positions, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.mesh.Normals = append(r.mesh.Normals, v)
		case "vt":
			v, err := parseVec2(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.mesh.UVs = append(r.mesh.UVs, v)
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			if !r.named {
				r.mesh.Name = lineTokens[1]
				r.named = true
			} else if r.mesh.Name != lineTokens[1] {
				r.logger.Debugf(`merging object "%s" into mesh "%s"`, lineTokens[1], r.mesh.Name)
			}
		case "f":
			corners, err := r.parseFace(lineTokens, relPositionOffset, relUvOffset, relNormalOffset)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}

			// Triangulate polygon as a fan around its first corner
			for index := 1; index+1 < len(corners); index++ {
				r.mesh.AddTriangle(corners[0], corners[index], corners[index+1])
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}

	return nil
}

// Parse face definition. Each face definition consists of at least 3
// arguments, one for each vertex. Each one of the vertex arguments is
// comprised of 1, 2 or 3 args separated by a slash character. The following
// formats are supported:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate an offset off the end
// of the vertex/uv/normal list. Missing uv or normal indices are set to -1.
func (r *wavefrontMeshReader) parseFace(lineTokens []string, relPositionOffset, relUvOffset, relNormalOffset int) ([]mesh.Corner, error) {
	if len(lineTokens) < 4 {
		return nil, fmt.Errorf(`unsupported syntax for "f"; expected at least 3 arguments; got %d`, len(lineTokens)-1)
	}

	corners := make([]mesh.Corner, len(lineTokens)-1)
	expIndices := 0
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return nil, fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return nil, fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		corner := mesh.Corner{Position: -1, Normal: -1, UV: -1}
		offset, err := selectFaceCoordIndex(vTokens[0], len(r.mesh.Positions), relPositionOffset)
		if err != nil {
			return nil, fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		corner.Position = int32(offset)

		if expIndices > 1 && vTokens[1] != "" {
			offset, err = selectFaceCoordIndex(vTokens[1], len(r.mesh.UVs), relUvOffset)
			if err != nil {
				return nil, fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
			corner.UV = int32(offset)
		} else {
			r.missingUVs = true
		}

		if expIndices > 2 && vTokens[2] != "" {
			offset, err = selectFaceCoordIndex(vTokens[2], len(r.mesh.Normals), relNormalOffset)
			if err != nil {
				return nil, fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
			corner.Normal = int32(offset)
		} else {
			r.missingNormals = true
		}

		corners[arg] = corner
	}

	return corners, nil
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a Vec2 row. A third (w) component is accepted and ignored.
func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf(`unsupported syntax for "%s"; expected 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
