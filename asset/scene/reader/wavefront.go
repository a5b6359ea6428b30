package reader

import (
	"bufio"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/octrace/asset"
	"github.com/achilleasa/octrace/asset/scene"
	"github.com/achilleasa/octrace/asset/texture"
	"github.com/achilleasa/octrace/log"
	"github.com/achilleasa/octrace/types"
)

// The specular exponent assigned to materials that do not define Ns.
const defaultSpecularExponent = 240.0

// The name of the material assigned to faces that appear before any usemtl.
const defaultMaterialName = "default"

type wavefrontSceneReader struct {
	logger log.Logger
	opts   Options

	// A map of material names to parsed materials.
	materials map[string]*scene.Material

	// Currently selected material.
	curMaterial *scene.Material

	// Loaded textures indexed by their resolved path.
	textureCache map[string]*texture.Texture
	textures     []*texture.Texture

	// List of vertices, normals and uv coords.
	vertexList []types.Vec3
	normalList []types.Vec3
	uvList     []types.Vec2

	// Parsed faces; indexed once parsing completes and the octree
	// bounds are known.
	triangles []*scene.Triangle

	// Scene directives.
	camera *scene.Camera
	lights []scene.Light
	bounds *scene.AABB

	// An error stack that provides additional error information when
	// scene files include other files (models, mat libs e.t.c)
	errStack []string
}

// Create a new wavefront scene reader.
func newWavefrontReader(opts Options) *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger:       log.New("wavefront scene reader"),
		opts:         opts,
		materials:    make(map[string]*scene.Material),
		textureCache: make(map[string]*texture.Texture),
		camera:       scene.DefaultCamera(),
		errStack:     make([]string, 0),
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	err := r.parse(sceneRes)
	if err != nil {
		return nil, err
	}
	r.logger.Noticef("parsed scene in %d ms", time.Since(start).Nanoseconds()/1e6)

	return r.buildScene(), nil
}

// Assemble the parsed data into a scene and index its triangles.
func (r *wavefrontSceneReader) buildScene() *scene.Scene {
	bounds := scene.DefaultBounds
	switch {
	case r.bounds != nil:
		bounds = *r.bounds
	case r.opts.FitBounds && len(r.triangles) != 0:
		bounds = fitBounds(r.triangles)
		r.logger.Infof("fitted octree bounds to scene geometry: %v", bounds)
	}

	sc := scene.NewScene(bounds, r.opts.OctreeDepth)
	sc.VertexList = r.vertexList
	sc.NormalList = r.normalList
	sc.UvList = r.uvList
	sc.Materials = r.materials
	sc.Textures = r.textures
	sc.Camera = r.camera
	sc.Lights = r.lights
	if len(sc.Lights) == 0 {
		r.logger.Info("scene defines no lights; using default light rig")
		sc.Lights = scene.DefaultLights()
	}

	// Materials without a base texture sample a shared white texel so
	// that their coefficients define the surface color.
	white := texture.Solid(types.White)
	for _, mat := range sc.Materials {
		if mat.Texture == nil {
			mat.Texture = white
		}
	}

	start := time.Now()
	for _, tri := range r.triangles {
		sc.AddTriangle(tri)
	}
	stats := sc.Octree.Stats()
	r.logger.Noticef(
		"indexed %d triangles in %d ms (octree: %d nodes, %d leaves, max depth %d, %d refs)",
		len(r.triangles), time.Since(start).Nanoseconds()/1e6,
		stats.Nodes, stats.Leaves, stats.MaxDepth, stats.References,
	)
	if stats.OutOfBounds > 0 {
		r.logger.Warningf("%d triangles lie outside the octree bounds %v and will not be rendered", stats.OutOfBounds, bounds)
	}
	if stats.Straddling > 0 {
		r.logger.Infof("%d triangles extend past the octree bounds %v; consider fitting the bounds to the geometry", stats.Straddling, bounds)
	}

	return sc
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
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
func (r *wavefrontSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Create and select a default material for surfaces not using one.
func (r *wavefrontSceneReader) defaultMaterial() *scene.Material {
	mat, exists := r.materials[defaultMaterialName]
	if !exists {
		mat = &scene.Material{
			Name:             defaultMaterialName,
			Ambient:          types.Vec3{0.2, 0.2, 0.2},
			Diffuse:          types.Vec3{0.7, 0.7, 0.7},
			SpecularExponent: scene.NoSpecular,
		}
		r.materials[defaultMaterialName] = mat
	}
	return mat
}

// Parse wavefront object scene format.
func (r *wavefrontSceneReader) parse(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	// The main obj file may include (call) several other object files. Each
	// object file contains 1-based indices (when they are positive). By
	// tracking the current vertex/uv/normal offsets we can apply them
	// while parsing faces to select the correct coordinates.
	relVertexOffset := len(r.vertexList)
	relUvOffset := len(r.uvList)
	relNormalOffset := len(r.normalList)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call", "mtllib":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}

			switch lineTokens[0] {
			case "call":
				err = r.parse(incRes)
			case "mtllib":
				err = r.parseMaterials(incRes)
			}
			incRes.Close()

			if err != nil {
				return err
			}
			r.popFrame()
		case "usemtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "usemtl"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			mat, exists := r.materials[lineTokens[1]]
			if !exists {
				return r.emitError(res.Path(), lineNum, `undefined material with name "%s"`, lineTokens[1])
			}
			r.curMaterial = mat
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.normalList = append(r.normalList, v)
		case "vt":
			v, err := parseVec2(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.uvList = append(r.uvList, v)
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}
			r.logger.Debugf(`parsing object "%s"`, lineTokens[1])
		case "f":
			triList, err := r.parseFace(lineTokens, relVertexOffset, relUvOffset, relNormalOffset)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.triangles = append(r.triangles, triList...)
		case "camera_eye":
			r.camera.Origin, err = parseVec3(lineTokens)
		case "camera_yaw":
			var deg float64
			deg, err = parseFloat64(lineTokens)
			r.camera.Yaw = deg * math.Pi / 180.0
		case "camera_pitch":
			var deg float64
			deg, err = parseFloat64(lineTokens)
			r.camera.Pitch = deg * math.Pi / 180.0
		case "viewport":
			err = r.parseViewport(lineTokens)
		case "light_ambient", "light_point", "light_directional":
			var light scene.Light
			light, err = parseLight(lineTokens)
			if err == nil {
				r.lights = append(r.lights, light)
			}
		case "octree_bounds":
			err = r.parseBounds(lineTokens)
		}

		// Report any errors from scene directives
		if err != nil {
			return r.emitError(res.Path(), lineNum, "%s", err.Error())
		}
	}

	if err = scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}
	return nil
}

// Parse a viewport definition: viewport width height distance
func (r *wavefrontSceneReader) parseViewport(lineTokens []string) error {
	if len(lineTokens) != 4 {
		return fmt.Errorf(`unsupported syntax for "viewport"; expected 3 arguments: width height distance; got %d`, len(lineTokens)-1)
	}
	v, err := parseVec3(lineTokens)
	if err != nil {
		return err
	}
	if v.MinComponent() <= 0 {
		return fmt.Errorf("viewport dimensions and distance must be positive; got %v", v)
	}
	r.camera.Viewport = scene.Viewport{Width: v[0], Height: v[1], Distance: v[2]}
	return nil
}

// Parse octree bounds: octree_bounds minX maxX minY maxY minZ maxZ
func (r *wavefrontSceneReader) parseBounds(lineTokens []string) error {
	if len(lineTokens) != 7 {
		return fmt.Errorf(`unsupported syntax for "octree_bounds"; expected 6 arguments: minX maxX minY maxY minZ maxZ; got %d`, len(lineTokens)-1)
	}

	var extents [6]float64
	for index := range extents {
		v, err := strconv.ParseFloat(lineTokens[index+1], 64)
		if err != nil {
			return err
		}
		extents[index] = v
	}

	for axis := 0; axis < 3; axis++ {
		if extents[axis*2] >= extents[axis*2+1] {
			return fmt.Errorf("octree bounds min must be less than max on every axis")
		}
	}

	bounds := scene.NewAABB(extents[0], extents[1], extents[2], extents[3], extents[4], extents[5])
	r.bounds = &bounds
	return nil
}

// Parse a light definition. The following formats are supported:
// - light_ambient intensity
// - light_point intensity x y z
// - light_directional intensity dirX dirY dirZ
func parseLight(lineTokens []string) (scene.Light, error) {
	expArgs := 4
	if lineTokens[0] == "light_ambient" {
		expArgs = 1
	}
	if len(lineTokens)-1 != expArgs {
		return scene.Light{}, fmt.Errorf(`unsupported syntax for "%s"; expected %d arguments; got %d`, lineTokens[0], expArgs, len(lineTokens)-1)
	}

	intensity, err := parseFloat64(lineTokens)
	if err != nil {
		return scene.Light{}, err
	}
	if intensity < 0 {
		return scene.Light{}, fmt.Errorf("light intensity must not be negative; got %f", intensity)
	}
	if lineTokens[0] == "light_ambient" {
		return scene.NewAmbientLight(intensity), nil
	}

	v, err := parseVec3(lineTokens[1:])
	if err != nil {
		return scene.Light{}, err
	}
	if lineTokens[0] == "light_point" {
		return scene.NewPointLight(intensity, v), nil
	}
	if v.IsZero() {
		return scene.Light{}, fmt.Errorf("directional light requires a non-zero direction")
	}
	return scene.NewDirectionalLight(intensity, v), nil
}

// Parse face definition. Each face definitions consists of 3 arguments,
// one for each vertex. Each one of the vertex arguments is comprised of
// 1, 2 or 3 args separated by a slash character. The following formats are
// supported:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate
// an offset off the end of the vertex/uv list.
//
// This method only works with triangular/quad faces and will return an error if a
// face with more than 4 vertices is encountered.
func (r *wavefrontSceneReader) parseFace(lineTokens []string, relVertexOffset, relUvOffset, relNormalOffset int) ([]*scene.Triangle, error) {
	if len(lineTokens) < 4 || len(lineTokens) > 5 {
		return nil, fmt.Errorf(`unsupported syntax for "f"; expected 3 arguments for triangular face or 4 arguments for a quad face; got %d. Select the triangulation option in your exporter`, len(lineTokens)-1)
	}

	var vertices [4]types.Vec3
	var normals [4]types.Vec3
	var uv [4]types.Vec2
	var vOffset int
	var err error
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

		vOffset, err = selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return nil, fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		vertices[arg] = r.vertexList[vOffset]

		// Parse UV coords if specified
		if expIndices > 1 && vTokens[1] != "" {
			vOffset, err = selectFaceCoordIndex(vTokens[1], len(r.uvList), relUvOffset)
			if err != nil {
				return nil, fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
			uv[arg] = r.uvList[vOffset]
		}

		// Parse normal coords if specified. Missing normals stay zero and
		// the shader falls back to the face normal.
		if expIndices > 2 && vTokens[2] != "" {
			vOffset, err = selectFaceCoordIndex(vTokens[2], len(r.normalList), relNormalOffset)
			if err != nil {
				return nil, fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
			normals[arg] = r.normalList[vOffset]
		}
	}

	// If no material defined select the default.
	if r.curMaterial == nil {
		r.curMaterial = r.defaultMaterial()
	}

	// Assemble vertices into one or two triangles depending on whether we are parsing a triangular or a quad face
	triangles := make([]*scene.Triangle, 0, 2)
	indiceList := [][3]int{{0, 1, 2}}
	if len(lineTokens) == 5 {
		indiceList = append(indiceList, [3]int{0, 2, 3})
	}

	var triVerts [3]types.Vec3
	var triNormals [3]types.Vec3
	var triUVs [3]types.Vec2
	for _, indices := range indiceList {
		for triIndex, selectIndex := range indices {
			triVerts[triIndex] = vertices[selectIndex]
			triNormals[triIndex] = normals[selectIndex]
			triUVs[triIndex] = uv[selectIndex]
		}
		triangles = append(triangles, scene.NewTriangle(triVerts, triUVs, triNormals, r.curMaterial))
	}

	return triangles, nil
}

// Parse a wavefront material library.
func (r *wavefrontSceneReader) parseMaterials(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	r.logger.Infof(`parsing material library "%s"`, res.Path())

	scanner := bufio.NewScanner(res)

	var curMaterial *scene.Material = nil
	var matName string = ""

	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "newmtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "newmtl"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			matName = lineTokens[1]
			if _, exists := r.materials[matName]; exists {
				return r.emitError(res.Path(), lineNum, `material "%s" already defined`, matName)
			}

			curMaterial = &scene.Material{
				Name:             matName,
				SpecularExponent: defaultSpecularExponent,
			}
			r.materials[matName] = curMaterial
		default:
			if curMaterial == nil {
				return r.emitError(res.Path(), lineNum, `got "%s" without a "newmtl"`, lineTokens[0])
			}

			switch lineTokens[0] {
			case "include":
				if len(lineTokens) < 2 {
					return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
				}

				baseMaterial, exists := r.materials[lineTokens[1]]
				if !exists {
					return r.emitError(res.Path(), lineNum, `could not include unknown material "%s"`, lineTokens[1])
				}

				// Overwrite material but keep the original name
				*curMaterial = *baseMaterial
				curMaterial.Name = matName
			case "Ka", "Kd", "Ks":
				var target *types.Vec3
				switch lineTokens[0] {
				case "Ka":
					target = &curMaterial.Ambient
				case "Kd":
					target = &curMaterial.Diffuse
				case "Ks":
					target = &curMaterial.Specular
				}

				*target, err = parseCoefficients(lineTokens)
			case "Ns":
				curMaterial.SpecularExponent, err = parseFloat64(lineTokens)
			case "refl":
				curMaterial.Reflectivity, err = parseFloat64(lineTokens)
				if err == nil && (curMaterial.Reflectivity < 0 || curMaterial.Reflectivity > 1) {
					err = fmt.Errorf("reflectivity must be in the [0, 1] range; got %f", curMaterial.Reflectivity)
				}
			case "map_Ka", "map_Kd", "bump", "map_bump":
				if len(lineTokens) < 2 {
					return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
				}

				// Texture options (e.g. -bm 1.0) precede the file name
				tex := r.loadTexture(lineTokens[len(lineTokens)-1], res)
				if tex == nil {
					break
				}

				switch lineTokens[0] {
				case "map_Ka", "map_Kd":
					curMaterial.Texture = tex
				default:
					curMaterial.BumpMap = tex
				}
			}

			// Report any errors
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		}
	}

	if err = scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}
	return nil
}

// Load a texture relative to the material library that references it.
// Textures that cannot be loaded are skipped with a warning.
func (r *wavefrontSceneReader) loadTexture(name string, relTo *asset.Resource) *texture.Texture {
	texRes, err := asset.NewResource(name, relTo)
	if err != nil {
		r.logger.Warningf(`skipping missing texture "%s": %s`, name, err.Error())
		return nil
	}
	defer texRes.Close()

	if tex, exists := r.textureCache[texRes.Path()]; exists {
		return tex
	}

	tex, err := texture.New(texRes)
	if err != nil {
		r.logger.Warningf(`skipping texture "%s": %s`, name, err.Error())
		return nil
	}

	r.logger.Infof(`loaded texture "%s" (%dx%d)`, texRes.Path(), tex.Width, tex.Height)
	r.textureCache[texRes.Path()] = tex
	r.textures = append(r.textures, tex)
	return tex
}

// Calculate the tightest box enclosing a set of triangles.
func fitBounds(triangles []*scene.Triangle) scene.AABB {
	bounds := scene.AABBFromTriangle(triangles[0])
	for _, tri := range triangles[1:] {
		box := scene.AABBFromTriangle(tri)
		bounds.Min = types.MinVec3(bounds.Min, box.Min)
		bounds.Max = types.MaxVec3(bounds.Max, box.Max)
	}

	// Pad flat extents so that the box has a volume
	for axis := 0; axis < 3; axis++ {
		if bounds.Max[axis]-bounds.Min[axis] < 1e-6 {
			bounds.Min[axis] -= 0.5
			bounds.Max[axis] += 0.5
		}
	}
	return bounds
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

// Parse a float scalar value.
func parseFloat64(lineTokens []string) (float64, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf(`unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	return strconv.ParseFloat(lineTokens[1], 64)
}

// Parse a Vec3 whose components must lie in the [0, 1] range.
func parseCoefficients(lineTokens []string) (types.Vec3, error) {
	v, err := parseVec3(lineTokens)
	if err != nil {
		return v, err
	}
	if v.MinComponent() < 0 || v.MaxComponent() > 1 {
		return v, fmt.Errorf(`all lighting coefficients for "%s" must be in the [0, 1] range; got %v`, lineTokens[0], v)
	}
	return v, nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 64)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = coord
	}
	return v, nil
}

// Parse a Vec2 row.
func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf(`unsupported syntax for "%s"; expected 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 64)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = coord
	}
	return v, nil
}
